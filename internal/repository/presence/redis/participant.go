package redis

import (
	"context"

	"github.com/sharetube/videochat/internal/repository/presence"
)

func (r repo) getParticipantsKey(roomId string) string {
	return "room:" + roomId + ":participants"
}

func (r repo) AddParticipant(ctx context.Context, params *presence.AddParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	key := r.getParticipantsKey(params.RoomId)
	if err := r.addOrdered.Run(ctx, r.rc, []string{key}, params.ParticipantId, r.ttl.Milliseconds()).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) TouchParticipant(ctx context.Context, params *presence.TouchParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	key := r.getParticipantsKey(params.RoomId)
	if err := r.touch.Run(ctx, r.rc, []string{key}, params.ParticipantId, r.ttl.Milliseconds()).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) RemoveParticipant(ctx context.Context, params *presence.RemoveParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	if err := r.rc.ZRem(ctx, r.getParticipantsKey(params.RoomId), params.ParticipantId).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetParticipantIds(ctx context.Context, roomId string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)

	participantIds, err := r.rc.ZRange(ctx, r.getParticipantsKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	if len(participantIds) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", presence.ErrRoomNotFound)
		return nil, presence.ErrRoomNotFound
	}

	return participantIds, nil
}
