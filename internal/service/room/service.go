package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/videochat/internal/repository/connection"
	"github.com/sharetube/videochat/internal/repository/presence"
	"github.com/sharetube/videochat/pkg/wsutils"
)

var (
	ErrNotJoined     = errors.New("connection has not joined a room")
	ErrAlreadyJoined = errors.New("connection already joined another room")
	ErrRoomNotFound  = errors.New("room not found")
)

type iConnRepo interface {
	Add(context.Context, *wsutils.Conn, connection.Membership) ([]connection.Member, error)
	Get(context.Context, *wsutils.Conn) (connection.Membership, error)
	Remove(context.Context, *wsutils.Conn) (connection.Membership, error)
	GetRoomConns(ctx context.Context, roomId string, except *wsutils.Conn) []*wsutils.Conn
	Stats() (rooms, conns int)
}

type iPresenceRepo interface {
	AddParticipant(context.Context, *presence.AddParticipantParams) error
	RemoveParticipant(context.Context, *presence.RemoveParticipantParams) error
	TouchParticipant(context.Context, *presence.TouchParticipantParams) error
	GetParticipantIds(context.Context, string) ([]string, error)
}

type service struct {
	connRepo     iConnRepo
	presenceRepo iPresenceRepo
	logger       *slog.Logger
}

func NewService(connRepo iConnRepo, presenceRepo iPresenceRepo, logger *slog.Logger) *service {
	return &service{
		connRepo:     connRepo,
		presenceRepo: presenceRepo,
		logger:       logger,
	}
}

// Stats reports the number of non-empty rooms and joined connections.
func (s service) Stats() (rooms, conns int) {
	return s.connRepo.Stats()
}
