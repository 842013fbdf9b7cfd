package inmemory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sharetube/videochat/internal/repository/presence"
)

type repo struct {
	rooms  map[string][]string
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string][]string),
		logger: logger,
	}
}

func (r *repo) AddParticipant(ctx context.Context, params *presence.AddParticipantParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, "called", "params", params)
	participants := r.rooms[params.RoomId]
	if i := slices.Index(participants, params.ParticipantId); i >= 0 {
		participants = slices.Delete(participants, i, i+1)
	}
	r.rooms[params.RoomId] = append(participants, params.ParticipantId)

	return nil
}

// TouchParticipant adds the participant when it is missing. Entries never expire here.
func (r *repo) TouchParticipant(ctx context.Context, params *presence.TouchParticipantParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	participants := r.rooms[params.RoomId]
	if !slices.Contains(participants, params.ParticipantId) {
		r.rooms[params.RoomId] = append(participants, params.ParticipantId)
	}

	return nil
}

func (r *repo) RemoveParticipant(ctx context.Context, params *presence.RemoveParticipantParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, "called", "params", params)
	participants := r.rooms[params.RoomId]
	i := slices.Index(participants, params.ParticipantId)
	if i < 0 {
		return nil
	}

	participants = slices.Delete(participants, i, i+1)
	if len(participants) == 0 {
		delete(r.rooms, params.RoomId)
		return nil
	}
	r.rooms[params.RoomId] = participants

	return nil
}

func (r *repo) GetParticipantIds(ctx context.Context, roomId string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participants, ok := r.rooms[roomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", presence.ErrRoomNotFound)
		return nil, presence.ErrRoomNotFound
	}

	return slices.Clone(participants), nil
}
