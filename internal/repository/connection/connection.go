package connection

import (
	"errors"

	"github.com/sharetube/videochat/pkg/wsutils"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Membership struct {
	RoomId        string `json:"room_id"`
	ParticipantId string `json:"participant_id"`
}

// Member is a joined connection together with its identity.
type Member struct {
	Conn          *wsutils.Conn
	ParticipantId string
}
