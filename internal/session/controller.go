package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Controller owns the local media stream and the calls to every remote
// participant of one room. Calls are keyed by remote identity; a peer never
// has more than one.
//
// Both sides of a pair learn about each other from the relay, so only the
// participant with the lower identity places the call and the other answers.
type Controller struct {
	roomId    string
	media     MediaDevices
	transport Transport
	relay     Relay
	renderer  Renderer
	logger    *slog.Logger

	mu       sync.Mutex
	closed   bool
	degraded bool
	joined   bool
	identity string
	stream   Stream
	facing   Facing
	calls    map[string]Call
	known    map[string]struct{}
	// announced before local media was ready
	pending  []string
	incoming []Call
}

func NewController(roomId string, media MediaDevices, transport Transport, relay Relay, renderer Renderer, logger *slog.Logger) *Controller {
	return &Controller{
		roomId:    roomId,
		media:     media,
		transport: transport,
		relay:     relay,
		renderer:  renderer,
		logger:    logger.With("room_id", roomId),
		facing:    FacingUser,
		calls:     make(map[string]Call),
		known:     make(map[string]struct{}),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return StateClosed
	case c.joined:
		return StateJoined
	case c.stream != nil:
		return StateMediaReady
	default:
		return StateInitializing
	}
}

func (c *Controller) RoomId() string {
	return c.roomId
}

func (c *Controller) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.identity
}

func (c *Controller) Stream() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stream
}

// Degraded reports whether local media could not be acquired.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.degraded
}

// Peers returns the tracked remote participants, sorted.
func (c *Controller) Peers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.peersLocked()
}

// ActiveCalls returns the remote participants with an active call, sorted.
func (c *Controller) ActiveCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.calls))
	for id := range c.calls {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Start acquires local media. On failure the session keeps running without
// media: it still joins but neither places nor answers calls.
func (c *Controller) Start(ctx context.Context) error {
	stream, err := c.media.GetUserMedia(ctx, Constraints{Video: true, Audio: true, Facing: FacingUser})
	if err != nil {
		c.mu.Lock()
		c.degraded = true
		incoming := c.incoming
		c.incoming = nil
		c.pending = nil
		c.mu.Unlock()

		for _, call := range incoming {
			c.closeCall(ctx, call)
		}

		c.logger.WarnContext(ctx, "failed to acquire local media", "error", err)
		return fmt.Errorf("%w: %w", ErrNoMedia, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		stream.Stop()
		return nil
	}
	c.stream = stream
	c.facing = FacingUser
	pending := c.pending
	incoming := c.incoming
	c.pending = nil
	c.incoming = nil
	c.mu.Unlock()

	c.renderer.ShowLocal(stream)
	c.logger.InfoContext(ctx, "local media ready", "stream_id", stream.Id())

	for _, call := range incoming {
		c.answer(ctx, call, stream)
	}

	for _, peerId := range pending {
		c.HandleParticipantJoined(ctx, peerId)
	}

	return nil
}

// HandleIdentity joins the room once the transport identity is known.
func (c *Controller) HandleIdentity(ctx context.Context, identity string) error {
	c.mu.Lock()
	if c.closed || (c.joined && c.identity == identity) {
		c.mu.Unlock()
		return nil
	}
	c.identity = identity
	c.mu.Unlock()

	if err := c.relay.Join(ctx, c.roomId, identity); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.mu.Lock()
	c.joined = true
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "joined room", "participant_id", identity)
	return nil
}

func (c *Controller) HandleParticipantJoined(ctx context.Context, peerId string) {
	c.mu.Lock()
	if c.closed || peerId == "" || peerId == c.identity {
		c.mu.Unlock()
		return
	}
	c.known[peerId] = struct{}{}

	if c.stream == nil {
		if !c.degraded && !slices.Contains(c.pending, peerId) {
			c.pending = append(c.pending, peerId)
		}
		c.mu.Unlock()
		return
	}

	_, connected := c.calls[peerId]
	initiates := c.identity < peerId
	stream := c.stream
	c.mu.Unlock()

	if connected || !initiates {
		c.logger.DebugContext(ctx, "waiting for call", "peer_id", peerId, "connected", connected)
		return
	}

	c.connect(ctx, peerId, stream)
}

func (c *Controller) HandleParticipantLeft(ctx context.Context, peerId string) {
	c.mu.Lock()
	delete(c.known, peerId)
	c.pending = slices.DeleteFunc(c.pending, func(id string) bool { return id == peerId })
	call := c.calls[peerId]
	delete(c.calls, peerId)
	c.mu.Unlock()

	if call != nil {
		c.closeCall(ctx, call)
	}
	c.renderer.RemoveRemote(peerId)

	c.logger.InfoContext(ctx, "participant left", "peer_id", peerId)
}

// HandleIncomingCall answers an unsolicited call with the local stream. Calls
// that arrive before media is ready are answered once it is.
func (c *Controller) HandleIncomingCall(ctx context.Context, call Call) {
	c.mu.Lock()
	switch {
	case c.closed, c.degraded:
		c.mu.Unlock()
		c.closeCall(ctx, call)
		return
	case c.stream == nil:
		c.incoming = append(c.incoming, call)
		c.mu.Unlock()
		return
	}
	stream := c.stream
	c.mu.Unlock()

	c.answer(ctx, call, stream)
}

// SwitchCamera replaces the local stream with one from the opposite-facing
// camera and re-calls every tracked participant with it. The previous stream
// stays active if the new one cannot be acquired.
func (c *Controller) SwitchCamera(ctx context.Context) error {
	c.mu.Lock()
	if c.stream == nil {
		c.mu.Unlock()
		return ErrNoMedia
	}
	facing := c.facing.Opposite()
	c.mu.Unlock()

	stream, err := c.media.GetUserMedia(ctx, Constraints{Video: true, Audio: true, Facing: facing})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to switch camera", "error", err)
		return fmt.Errorf("failed to switch camera: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		stream.Stop()
		return nil
	}
	old := c.stream
	c.stream = stream
	c.facing = facing
	peers := c.peersLocked()
	c.mu.Unlock()

	old.Stop()
	c.renderer.ShowLocal(stream)

	for _, peerId := range peers {
		c.connect(ctx, peerId, stream)
	}

	c.logger.InfoContext(ctx, "camera switched", "facing", facing, "peers", len(peers))
	return nil
}

// Close ends every call and stops the local stream.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	calls := c.calls
	incoming := c.incoming
	stream := c.stream
	c.calls = make(map[string]Call)
	c.incoming = nil
	c.pending = nil
	c.mu.Unlock()

	for _, call := range calls {
		c.closeCall(ctx, call)
	}
	for _, call := range incoming {
		c.closeCall(ctx, call)
	}
	if stream != nil {
		stream.Stop()
	}
}

// connect places a call to peerId, closing any previous call to it first.
func (c *Controller) connect(ctx context.Context, peerId string, stream Stream) {
	c.mu.Lock()
	prior := c.calls[peerId]
	delete(c.calls, peerId)
	c.mu.Unlock()

	if prior != nil {
		c.closeCall(ctx, prior)
	}

	call, err := c.transport.Call(ctx, peerId, stream)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to call participant", "peer_id", peerId, "error", err)
		c.renderer.RemoveRemote(peerId)
		return
	}

	c.logger.DebugContext(ctx, "called participant", "peer_id", peerId)
	c.track(ctx, peerId, call)
}

func (c *Controller) answer(ctx context.Context, call Call, stream Stream) {
	peerId := call.PeerId()
	if err := call.Answer(stream); err != nil {
		c.logger.WarnContext(ctx, "failed to answer call", "peer_id", peerId, "error", err)
		c.closeCall(ctx, call)
		return
	}

	c.logger.DebugContext(ctx, "answered call", "peer_id", peerId)
	c.track(ctx, peerId, call)
}

func (c *Controller) track(ctx context.Context, peerId string, call Call) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.closeCall(ctx, call)
		return
	}
	prior := c.calls[peerId]
	c.calls[peerId] = call
	c.known[peerId] = struct{}{}
	c.mu.Unlock()

	if prior != nil && prior != call {
		c.closeCall(ctx, prior)
	}

	call.OnStream(func(stream Stream) {
		c.renderer.ShowRemote(peerId, stream)
	})
	call.OnClose(func() {
		c.mu.Lock()
		current := c.calls[peerId] == call
		if current {
			delete(c.calls, peerId)
		}
		c.mu.Unlock()

		if current {
			c.renderer.RemoveRemote(peerId)
		}
	})
}

func (c *Controller) closeCall(ctx context.Context, call Call) {
	if err := call.Close(); err != nil {
		c.logger.DebugContext(ctx, "failed to close call", "peer_id", call.PeerId(), "error", err)
	}
}

func (c *Controller) peersLocked() []string {
	ids := make([]string, 0, len(c.known))
	for id := range c.known {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
