package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/videochat/internal/repository/presence"
)

func (s service) GetRoom(ctx context.Context, roomId string) (Room, error) {
	participantIds, err := s.presenceRepo.GetParticipantIds(ctx, roomId)
	if err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, fmt.Errorf("failed to get participant ids: %w", err)
	}

	return Room{
		RoomId:         roomId,
		ParticipantIds: participantIds,
	}, nil
}
