package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	controller *Controller
	media      *fakeMedia
	transport  *fakeTransport
	relay      *fakeRelay
	renderer   *fakeRenderer
}

func newHarness(self string) *harness {
	h := &harness{
		media:     &fakeMedia{},
		transport: &fakeTransport{self: self},
		relay:     &fakeRelay{},
		renderer:  newFakeRenderer(),
	}
	h.controller = NewController("r1", h.media, h.transport, h.relay, h.renderer, slog.Default())
	return h
}

func TestRoomIdFromPath(t *testing.T) {
	assert.Equal(t, "r1", RoomIdFromPath("/room/r1"))
	assert.Equal(t, "r1", RoomIdFromPath("/room/r1/"))
	assert.Equal(t, "", RoomIdFromPath("/room"))
	assert.Equal(t, "", RoomIdFromPath("/"))
}

func TestJoinOnIdentity(t *testing.T) {
	h := newHarness("a")
	ctx := context.Background()

	require.NoError(t, h.controller.Start(ctx))
	assert.Equal(t, StateMediaReady, h.controller.State())

	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))
	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))

	assert.Equal(t, []joinCall{{roomId: "r1", participantId: "a"}}, h.relay.joins)
	assert.Equal(t, StateJoined, h.controller.State())
	assert.Equal(t, h.media.issued[0], h.renderer.Local())
}

func TestTwoParticipantsHaveOneCall(t *testing.T) {
	ctx := context.Background()
	net := &fakeNetwork{controllers: make(map[string]*Controller)}

	a := newHarness("a")
	b := newHarness("b")
	a.transport.net = net
	b.transport.net = net
	net.controllers["a"] = a.controller
	net.controllers["b"] = b.controller

	for id, h := range map[string]*harness{"a": a, "b": b} {
		require.NoError(t, h.controller.Start(ctx))
		require.NoError(t, h.controller.HandleIdentity(ctx, id))
	}

	// A joined first: B is told about A on its join, A is told about B
	b.controller.HandleParticipantJoined(ctx, "a")
	a.controller.HandleParticipantJoined(ctx, "b")

	assert.Len(t, a.transport.Placed(), 1)
	assert.Empty(t, b.transport.Placed())
	assert.Equal(t, []string{"b"}, a.controller.ActiveCalls())
	assert.Equal(t, []string{"a"}, b.controller.ActiveCalls())

	// a repeated notification does not call again
	a.controller.HandleParticipantJoined(ctx, "b")
	assert.Len(t, a.transport.Placed(), 1)

	// B renders the stream carried by A's call
	assert.Equal(t, a.media.issued[0], b.renderer.remote["a"])
}

func TestParticipantJoinedBeforeMediaIsCalledLater(t *testing.T) {
	h := newHarness("a")
	ctx := context.Background()

	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))
	h.controller.HandleParticipantJoined(ctx, "b")
	assert.Empty(t, h.transport.Placed())

	require.NoError(t, h.controller.Start(ctx))
	placed := h.transport.Placed()
	require.Len(t, placed, 1)
	assert.Equal(t, "b", placed[0].PeerId())
}

func TestIncomingCallBeforeMediaIsAnsweredLater(t *testing.T) {
	h := newHarness("b")
	ctx := context.Background()

	call := &fakeCall{peerId: "a"}
	h.controller.HandleIncomingCall(ctx, call)
	assert.Nil(t, call.answered)

	require.NoError(t, h.controller.Start(ctx))
	assert.Equal(t, h.media.issued[0], call.answered)
	assert.Equal(t, []string{"a"}, h.controller.ActiveCalls())
}

func TestDegradedModeStillJoins(t *testing.T) {
	h := newHarness("a")
	h.media.err = errors.New("permission denied")
	ctx := context.Background()

	err := h.controller.Start(ctx)
	assert.ErrorIs(t, err, ErrNoMedia)
	assert.True(t, h.controller.Degraded())

	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))
	assert.Len(t, h.relay.joins, 1)

	h.controller.HandleParticipantJoined(ctx, "b")
	assert.Empty(t, h.transport.Placed())

	call := &fakeCall{peerId: "c"}
	h.controller.HandleIncomingCall(ctx, call)
	assert.True(t, call.Closed())
	assert.Empty(t, h.controller.ActiveCalls())

	assert.ErrorIs(t, h.controller.SwitchCamera(ctx), ErrNoMedia)
}

func TestCameraSwitchRebuildsEveryCall(t *testing.T) {
	h := newHarness("b")
	ctx := context.Background()

	require.NoError(t, h.controller.Start(ctx))
	require.NoError(t, h.controller.HandleIdentity(ctx, "b"))

	// "c" is called by us, "a" calls us
	h.controller.HandleParticipantJoined(ctx, "c")
	incoming := &fakeCall{peerId: "a"}
	h.controller.HandleIncomingCall(ctx, incoming)
	h.controller.HandleParticipantJoined(ctx, "a")

	before := h.transport.Placed()
	require.Len(t, before, 1)
	oldStream := h.media.issued[0]

	require.NoError(t, h.controller.SwitchCamera(ctx))

	after := h.transport.Placed()
	require.Len(t, after, 3)
	newCalls := after[1:]
	assert.ElementsMatch(t, []string{"a", "c"}, []string{newCalls[0].PeerId(), newCalls[1].PeerId()})
	for _, call := range newCalls {
		assert.False(t, call.Closed())
	}

	assert.True(t, before[0].Closed())
	assert.True(t, incoming.Closed())

	require.Len(t, h.media.issued, 2)
	assert.True(t, oldStream.Stopped())
	assert.Equal(t, h.media.issued[1], h.renderer.Local())
	assert.Equal(t, FacingEnvironment, h.media.constraints[1].Facing)
	assert.Equal(t, []string{"a", "c"}, h.controller.ActiveCalls())
}

func TestCameraSwitchFailureKeepsStream(t *testing.T) {
	h := newHarness("a")
	ctx := context.Background()

	require.NoError(t, h.controller.Start(ctx))
	h.media.err = errors.New("no rear camera")

	assert.Error(t, h.controller.SwitchCamera(ctx))
	assert.False(t, h.media.issued[0].Stopped())
	assert.Equal(t, h.media.issued[0], h.controller.Stream())
}

func TestParticipantLeftClosesCall(t *testing.T) {
	h := newHarness("a")
	ctx := context.Background()

	require.NoError(t, h.controller.Start(ctx))
	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))
	h.controller.HandleParticipantJoined(ctx, "b")
	placed := h.transport.Placed()
	require.Len(t, placed, 1)

	h.controller.HandleParticipantLeft(ctx, "b")
	assert.True(t, placed[0].Closed())
	assert.Empty(t, h.controller.ActiveCalls())
	assert.Empty(t, h.controller.Peers())
}

func TestClose(t *testing.T) {
	h := newHarness("a")
	ctx := context.Background()

	require.NoError(t, h.controller.Start(ctx))
	require.NoError(t, h.controller.HandleIdentity(ctx, "a"))
	h.controller.HandleParticipantJoined(ctx, "b")

	h.controller.Close(ctx)
	assert.Equal(t, StateClosed, h.controller.State())
	assert.True(t, h.transport.Placed()[0].Closed())
	assert.True(t, h.media.issued[0].Stopped())

	incoming := &fakeCall{peerId: "c"}
	h.controller.HandleIncomingCall(ctx, incoming)
	assert.True(t, incoming.Closed())
}
