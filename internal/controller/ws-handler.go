package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/validator"
	"github.com/sharetube/videochat/pkg/wsutils"
)

type JoinRoomInput struct {
	RoomId        string `json:"room_id" validate:"required,max=128"`
	ParticipantId string `json:"participant_id" validate:"required,max=128"`
}

// handleJoinRoom announces the joiner to the room and every present member to the joiner.
func (c controller) handleJoinRoom(ctx context.Context, conn *wsutils.Conn, input JoinRoomInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return validator.Err(validationErrors)
	}

	// Frames other goroutines write to conn wait until the joiner has heard
	// of every member present at the join.
	var joinRoomResp room.JoinRoomResponse
	if err := conn.Batch(func(write func(any) error) error {
		var err error
		joinRoomResp, err = c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
			Conn:          conn,
			RoomId:        input.RoomId,
			ParticipantId: input.ParticipantId,
		})
		if err != nil {
			return fmt.Errorf("failed to join room: %w", err)
		}

		for _, participantId := range joinRoomResp.ParticipantIds {
			if err := write(&protocol.Output{
				Type:    protocol.TypeParticipantJoined,
				Payload: participantId,
			}); err != nil {
				return fmt.Errorf("failed to write to conn: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	if joinRoomResp.IsRepeated {
		c.logger.DebugContext(ctx, "repeated join ignored", "room_id", input.RoomId)
		return nil
	}

	c.broadcast(ctx, joinRoomResp.Conns, &protocol.Output{
		Type:    protocol.TypeParticipantJoined,
		Payload: input.ParticipantId,
	})

	return nil
}

func (c controller) handleVideoURL(ctx context.Context, conn *wsutils.Conn, payload json.RawMessage) error {
	return c.relay(ctx, conn, protocol.TypeVideoURL, payload)
}

func (c controller) handleVideoControl(ctx context.Context, conn *wsutils.Conn, payload json.RawMessage) error {
	return c.relay(ctx, conn, protocol.TypeVideoControl, payload)
}

// relay forwards payload unchanged to every other member of the sender's room.
func (c controller) relay(ctx context.Context, conn *wsutils.Conn, messageType string, payload json.RawMessage) error {
	relayResp, err := c.roomService.Relay(ctx, &room.RelayParams{
		SenderConn: conn,
	})
	if err != nil {
		return fmt.Errorf("failed to relay %s: %w", messageType, err)
	}

	c.broadcastRaw(ctx, relayResp.Conns, messageType, payload)
	return nil
}
