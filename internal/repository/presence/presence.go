package presence

import (
	"context"
	"errors"
)

var ErrRoomNotFound = errors.New("room not found")

type AddParticipantParams struct {
	ParticipantId string `json:"participant_id"`
	RoomId        string `json:"room_id"`
}

type RemoveParticipantParams struct {
	ParticipantId string `json:"participant_id"`
	RoomId        string `json:"room_id"`
}

type TouchParticipantParams struct {
	ParticipantId string `json:"participant_id"`
	RoomId        string `json:"room_id"`
}

// Repo records which participants are present in a room, in join order.
type Repo interface {
	AddParticipant(context.Context, *AddParticipantParams) error
	RemoveParticipant(context.Context, *RemoveParticipantParams) error
	// TouchParticipant marks a participant as still present, adding it back when
	// its entry has expired.
	TouchParticipant(context.Context, *TouchParticipantParams) error
	GetParticipantIds(ctx context.Context, roomId string) ([]string, error)
}
