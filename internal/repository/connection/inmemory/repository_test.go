package inmemory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/sharetube/videochat/internal/repository/connection"
	"github.com/sharetube/videochat/pkg/wsutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGetRemove(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(slog.Default())

	a := wsutils.NewConn(nil, "a")
	b := wsutils.NewConn(nil, "b")
	c := wsutils.NewConn(nil, "c")

	others, err := r.Add(ctx, a, connection.Membership{RoomId: "r1", ParticipantId: "pa"})
	require.NoError(t, err)
	assert.Empty(t, others)

	others, err = r.Add(ctx, b, connection.Membership{RoomId: "r1", ParticipantId: "pb"})
	require.NoError(t, err)
	assert.Equal(t, []connection.Member{{Conn: a, ParticipantId: "pa"}}, others)

	others, err = r.Add(ctx, c, connection.Membership{RoomId: "r2", ParticipantId: "pc"})
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = r.Add(ctx, a, connection.Membership{RoomId: "r2", ParticipantId: "pa"})
	assert.ErrorIs(t, err, connection.ErrAlreadyExists)

	membership, err := r.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "pb", membership.ParticipantId)

	assert.ElementsMatch(t, []*wsutils.Conn{a, b}, r.GetRoomConns(ctx, "r1", nil))
	assert.Equal(t, []*wsutils.Conn{b}, r.GetRoomConns(ctx, "r1", a))

	rooms, conns := r.Stats()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 3, conns)

	removed, err := r.Remove(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "r2", removed.RoomId)
	assert.Empty(t, r.GetRoomConns(ctx, "r2", nil))

	rooms, _ = r.Stats()
	assert.Equal(t, 1, rooms, "empty room must vanish")

	_, err = r.Remove(ctx, c)
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.Get(ctx, c)
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
