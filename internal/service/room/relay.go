package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/videochat/internal/repository/connection"
	"github.com/sharetube/videochat/internal/repository/presence"
	"github.com/sharetube/videochat/pkg/wsutils"
)

type JoinRoomParams struct {
	Conn          *wsutils.Conn
	RoomId        string
	ParticipantId string
}

type JoinRoomResponse struct {
	// IsRepeated is set when the connection already joined with the same
	// room and identity. Nothing must be broadcast in that case.
	IsRepeated bool
	// Conns are the members to notify about the new participant.
	Conns []*wsutils.Conn
	// ParticipantIds are the members present before the join, to announce to the joiner.
	ParticipantIds []string
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	membership := connection.Membership{
		RoomId:        params.RoomId,
		ParticipantId: params.ParticipantId,
	}

	existing, err := s.connRepo.Get(ctx, params.Conn)
	switch {
	case err == nil && existing == membership:
		return JoinRoomResponse{IsRepeated: true}, nil
	case err == nil:
		return JoinRoomResponse{}, ErrAlreadyJoined
	case !errors.Is(err, connection.ErrNotFound):
		return JoinRoomResponse{}, fmt.Errorf("failed to get membership: %w", err)
	}

	others, err := s.connRepo.Add(ctx, params.Conn, membership)
	if err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return JoinRoomResponse{}, ErrAlreadyJoined
		}
		return JoinRoomResponse{}, fmt.Errorf("failed to add membership: %w", err)
	}

	if err := s.presenceRepo.AddParticipant(ctx, &presence.AddParticipantParams{
		ParticipantId: params.ParticipantId,
		RoomId:        params.RoomId,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to add participant to presence", "error", err)
	}

	resp := JoinRoomResponse{
		Conns:          make([]*wsutils.Conn, 0, len(others)),
		ParticipantIds: make([]string, 0, len(others)),
	}
	for _, other := range others {
		resp.Conns = append(resp.Conns, other.Conn)
		resp.ParticipantIds = append(resp.ParticipantIds, other.ParticipantId)
	}

	return resp, nil
}

type RelayParams struct {
	SenderConn *wsutils.Conn
}

type RelayResponse struct {
	RoomId        string
	ParticipantId string
	Conns         []*wsutils.Conn
}

// Relay resolves the recipients of an event sent by SenderConn: every other
// member of its room.
func (s service) Relay(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	membership, err := s.connRepo.Get(ctx, params.SenderConn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return RelayResponse{}, ErrNotJoined
		}
		return RelayResponse{}, fmt.Errorf("failed to get membership: %w", err)
	}

	return RelayResponse{
		RoomId:        membership.RoomId,
		ParticipantId: membership.ParticipantId,
		Conns:         s.connRepo.GetRoomConns(ctx, membership.RoomId, params.SenderConn),
	}, nil
}

type DisconnectParams struct {
	Conn *wsutils.Conn
}

type DisconnectResponse struct {
	RoomId        string
	ParticipantId string
	Conns         []*wsutils.Conn
}

func (s service) Disconnect(ctx context.Context, params *DisconnectParams) (DisconnectResponse, error) {
	membership, err := s.connRepo.Remove(ctx, params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return DisconnectResponse{}, ErrNotJoined
		}
		return DisconnectResponse{}, fmt.Errorf("failed to remove membership: %w", err)
	}

	if err := s.presenceRepo.RemoveParticipant(ctx, &presence.RemoveParticipantParams{
		ParticipantId: membership.ParticipantId,
		RoomId:        membership.RoomId,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to remove participant from presence", "error", err)
	}

	return DisconnectResponse{
		RoomId:        membership.RoomId,
		ParticipantId: membership.ParticipantId,
		Conns:         s.connRepo.GetRoomConns(ctx, membership.RoomId, nil),
	}, nil
}

type RefreshParams struct {
	Conn *wsutils.Conn
}

// Refresh keeps the presence entry of a joined connection from expiring.
func (s service) Refresh(ctx context.Context, params *RefreshParams) error {
	membership, err := s.connRepo.Get(ctx, params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return ErrNotJoined
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}

	if err := s.presenceRepo.TouchParticipant(ctx, &presence.TouchParticipantParams{
		ParticipantId: membership.ParticipantId,
		RoomId:        membership.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to touch participant: %w", err)
	}

	return nil
}
