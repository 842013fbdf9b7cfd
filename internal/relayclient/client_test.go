package relayclient

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sharetube/videochat/internal/controller"
	"github.com/sharetube/videochat/internal/metrics"
	connInmemory "github.com/sharetube/videochat/internal/repository/connection/inmemory"
	presenceInmemory "github.com/sharetube/videochat/internal/repository/presence/inmemory"
	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/videodata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T) string {
	t.Helper()

	service := room.NewService(
		connInmemory.NewRepo(slog.Default()),
		presenceInmemory.NewRepo(slog.Default()),
		slog.Default(),
	)
	c := controller.NewController(service, videodata.New(time.Second), metrics.New(), &controller.Config{
		StaticPath:   t.TempDir(),
		WSReadLimit:  32768,
		WSPingPeriod: time.Minute,
	}, slog.Default())

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type events struct {
	joined   chan string
	left     chan string
	urls     chan string
	commands chan protocol.PlaybackCommand
	errors   chan string
}

func run(t *testing.T, ctx context.Context, c *Client) *events {
	t.Helper()

	ev := &events{
		joined:   make(chan string, 8),
		left:     make(chan string, 8),
		urls:     make(chan string, 8),
		commands: make(chan protocol.PlaybackCommand, 8),
		errors:   make(chan string, 8),
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, Handlers{
			OnParticipantJoined: func(_ context.Context, id string) { ev.joined <- id },
			OnParticipantLeft:   func(_ context.Context, id string) { ev.left <- id },
			OnVideoURL:          func(_ context.Context, url string) { ev.urls <- url },
			OnVideoControl:      func(_ context.Context, cmd protocol.PlaybackCommand) { ev.commands <- cmd },
			OnError:             func(_ context.Context, message string) { ev.errors <- message },
		})
	}()
	t.Cleanup(func() {
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return")
		}
	})

	return ev
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	var zero T
	return zero
}

func TestClientRoundTrip(t *testing.T) {
	url := newRelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := Dial(ctx, url, slog.Default())
	require.NoError(t, err)
	b, err := Dial(ctx, url, slog.Default())
	require.NoError(t, err)

	aEvents := run(t, ctx, a)
	bEvents := run(t, ctx, b)

	require.NoError(t, a.Join(ctx, "r1", "pa"))
	// relay before join is rejected
	require.NoError(t, b.SetVideoURL(ctx, "https://youtu.be/abc123"))
	assert.Contains(t, receive(t, bEvents.errors), room.ErrNotJoined.Error())

	require.NoError(t, b.Join(ctx, "r1", "pb"))
	assert.Equal(t, "pb", receive(t, aEvents.joined))
	assert.Equal(t, "pa", receive(t, bEvents.joined))

	require.NoError(t, b.SetVideoURL(ctx, "https://youtu.be/abc123"))
	assert.Equal(t, "https://youtu.be/abc123", receive(t, aEvents.urls))

	cmd := protocol.PlaybackCommand{Action: protocol.ActionPause, CurrentTime: 12.25}
	require.NoError(t, a.SendPlaybackCommand(ctx, cmd))
	assert.Equal(t, cmd, receive(t, bEvents.commands))

	require.NoError(t, b.Close())
	assert.Equal(t, "pb", receive(t, aEvents.left))
}
