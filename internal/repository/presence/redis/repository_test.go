package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/videochat/internal/repository/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Minute, slog.Default()), s
}

func TestParticipantsKeepJoinOrder(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.AddParticipant(ctx, &presence.AddParticipantParams{
			ParticipantId: id,
			RoomId:        "r1",
		}))
	}

	ids, err := r.GetParticipantIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	require.NoError(t, r.RemoveParticipant(ctx, &presence.RemoveParticipantParams{
		ParticipantId: "b",
		RoomId:        "r1",
	}))

	ids, err = r.GetParticipantIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestEmptyRoomIsNotFound(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetParticipantIds(ctx, "nope")
	assert.ErrorIs(t, err, presence.ErrRoomNotFound)

	require.NoError(t, r.AddParticipant(ctx, &presence.AddParticipantParams{ParticipantId: "a", RoomId: "r1"}))
	require.NoError(t, r.RemoveParticipant(ctx, &presence.RemoveParticipantParams{ParticipantId: "a", RoomId: "r1"}))

	_, err = r.GetParticipantIds(ctx, "r1")
	assert.ErrorIs(t, err, presence.ErrRoomNotFound)
}

func TestParticipantsExpire(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddParticipant(ctx, &presence.AddParticipantParams{ParticipantId: "a", RoomId: "r1"}))
	assert.Equal(t, time.Minute, s.TTL(r.getParticipantsKey("r1")))

	s.FastForward(2 * time.Minute)

	_, err := r.GetParticipantIds(ctx, "r1")
	assert.ErrorIs(t, err, presence.ErrRoomNotFound)
}

func TestTouchKeepsParticipantsAlive(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddParticipant(ctx, &presence.AddParticipantParams{ParticipantId: "a", RoomId: "r1"}))
	require.NoError(t, r.AddParticipant(ctx, &presence.AddParticipantParams{ParticipantId: "b", RoomId: "r1"}))

	s.FastForward(50 * time.Second)
	require.NoError(t, r.TouchParticipant(ctx, &presence.TouchParticipantParams{ParticipantId: "a", RoomId: "r1"}))
	assert.Equal(t, time.Minute, s.TTL(r.getParticipantsKey("r1")))

	s.FastForward(50 * time.Second)
	ids, err := r.GetParticipantIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids, "touch must not reorder")

	s.FastForward(2 * time.Minute)
	require.NoError(t, r.TouchParticipant(ctx, &presence.TouchParticipantParams{ParticipantId: "b", RoomId: "r1"}))

	ids, err = r.GetParticipantIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}
