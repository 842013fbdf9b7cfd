package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeStream struct {
	id      string
	mu      sync.Mutex
	stopped bool
}

func (s *fakeStream) Id() string {
	return s.id
}

func (s *fakeStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeMedia struct {
	mu          sync.Mutex
	err         error
	issued      []*fakeStream
	constraints []Constraints
}

func (m *fakeMedia) GetUserMedia(_ context.Context, constraints Constraints) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.constraints = append(m.constraints, constraints)
	if m.err != nil {
		return nil, m.err
	}

	stream := &fakeStream{id: fmt.Sprintf("stream-%d", len(m.issued)+1)}
	m.issued = append(m.issued, stream)
	return stream, nil
}

type fakeCall struct {
	peerId string
	stream Stream

	mu       sync.Mutex
	answered Stream
	closed   bool
	onClose  []func()
	remote   *fakeCall
}

func (c *fakeCall) PeerId() string {
	return c.peerId
}

func (c *fakeCall) Answer(stream Stream) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("call closed")
	}
	c.answered = stream
	return nil
}

func (c *fakeCall) OnStream(fn func(Stream)) {
	if c.stream != nil {
		fn(c.stream)
	}
}

func (c *fakeCall) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = append(c.onClose, fn)
}

// Close closes both ends of the call and fires their close handlers.
func (c *fakeCall) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	handlers := c.onClose
	remote := c.remote
	c.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
	if remote != nil {
		remote.Close()
	}
	return nil
}

func (c *fakeCall) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeTransport records placed calls. When net is set, the callee controller
// receives the other end as an incoming call.
type fakeTransport struct {
	self string
	net  *fakeNetwork

	mu     sync.Mutex
	placed []*fakeCall
}

func (t *fakeTransport) Call(ctx context.Context, peerId string, stream Stream) (Call, error) {
	call := &fakeCall{peerId: peerId}

	t.mu.Lock()
	t.placed = append(t.placed, call)
	t.mu.Unlock()

	if t.net != nil {
		callee, ok := t.net.controllers[peerId]
		if !ok {
			return nil, fmt.Errorf("peer %s unavailable", peerId)
		}
		incoming := &fakeCall{peerId: t.self, stream: stream, remote: call}
		call.remote = incoming
		callee.HandleIncomingCall(ctx, incoming)
	}

	return call, nil
}

func (t *fakeTransport) Placed() []*fakeCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*fakeCall(nil), t.placed...)
}

type fakeNetwork struct {
	controllers map[string]*Controller
}

type fakeRenderer struct {
	mu     sync.Mutex
	local  Stream
	remote map[string]Stream
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{remote: make(map[string]Stream)}
}

func (r *fakeRenderer) ShowLocal(stream Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local = stream
}

func (r *fakeRenderer) ShowRemote(peerId string, stream Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remote[peerId] = stream
}

func (r *fakeRenderer) RemoveRemote(peerId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.remote, peerId)
}

func (r *fakeRenderer) Local() Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local
}

type joinCall struct {
	roomId        string
	participantId string
}

type fakeRelay struct {
	mu    sync.Mutex
	joins []joinCall
}

func (r *fakeRelay) Join(_ context.Context, roomId, participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, joinCall{roomId: roomId, participantId: participantId})
	return nil
}
