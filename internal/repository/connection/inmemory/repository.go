package inmemory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sharetube/videochat/internal/repository/connection"
	"github.com/sharetube/videochat/pkg/wsutils"
)

// repo is the room-membership table. A room exists while at least one
// connection is a member of it.
type repo struct {
	memberships map[*wsutils.Conn]connection.Membership
	rooms       map[string]map[*wsutils.Conn]struct{}
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		memberships: make(map[*wsutils.Conn]connection.Membership),
		rooms:       make(map[string]map[*wsutils.Conn]struct{}),
		logger:      logger,
	}
}

// Add records membership for conn and returns the members that were already in
// the room, taken atomically with the insert.
func (r *repo) Add(ctx context.Context, conn *wsutils.Conn, membership connection.Membership) ([]connection.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, "called", "conn_id", conn.ID(), "membership", membership)
	if _, ok := r.memberships[conn]; ok {
		r.logger.InfoContext(ctx, "failed to add membership", "error", connection.ErrAlreadyExists)
		return nil, connection.ErrAlreadyExists
	}

	room, ok := r.rooms[membership.RoomId]
	if !ok {
		room = make(map[*wsutils.Conn]struct{})
		r.rooms[membership.RoomId] = room
	}

	others := make([]connection.Member, 0, len(room))
	for other := range room {
		others = append(others, connection.Member{
			Conn:          other,
			ParticipantId: r.memberships[other].ParticipantId,
		})
	}

	r.memberships[conn] = membership
	room[conn] = struct{}{}

	r.logger.DebugContext(ctx, "returned", "room_size", len(room))
	return others, nil
}

func (r *repo) Get(ctx context.Context, conn *wsutils.Conn) (connection.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	membership, ok := r.memberships[conn]
	if !ok {
		return connection.Membership{}, connection.ErrNotFound
	}

	return membership, nil
}

func (r *repo) Remove(ctx context.Context, conn *wsutils.Conn) (connection.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, "called", "conn_id", conn.ID())
	membership, ok := r.memberships[conn]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", connection.ErrNotFound)
		return connection.Membership{}, connection.ErrNotFound
	}

	delete(r.memberships, conn)
	if room, ok := r.rooms[membership.RoomId]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(r.rooms, membership.RoomId)
		}
	}

	r.logger.DebugContext(ctx, "returned", "membership", membership)
	return membership, nil
}

// GetRoomConns returns the connections of roomId, excluding except when it is not nil.
func (r *repo) GetRoomConns(ctx context.Context, roomId string, except *wsutils.Conn) []*wsutils.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomId]
	conns := make([]*wsutils.Conn, 0, len(room))
	for conn := range room {
		if conn == except {
			continue
		}
		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) Stats() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), len(r.memberships)
}
