package headless

import (
	"sync"
	"time"
)

// clock is a position that advances with wall time while playing.
type clock struct {
	mu        sync.Mutex
	now       func() time.Time
	playing   bool
	position  float64
	since     time.Time
	closed    bool
	listeners map[string][]func()
}

func newClock(now func() time.Time) *clock {
	if now == nil {
		now = time.Now
	}

	return &clock{
		now:       now,
		listeners: make(map[string][]func()),
	}
}

func (c *clock) current() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.currentLocked()
}

func (c *clock) currentLocked() float64 {
	if !c.playing {
		return c.position
	}

	return c.position + c.now().Sub(c.since).Seconds()
}

func (c *clock) seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	c.position = seconds
	c.since = c.now()
}

func (c *clock) play() {
	c.mu.Lock()
	if c.playing || c.closed {
		c.mu.Unlock()
		return
	}
	c.position = c.currentLocked()
	c.since = c.now()
	c.playing = true
	c.mu.Unlock()

	c.emit("play")
}

func (c *clock) pause() {
	c.mu.Lock()
	if !c.playing || c.closed {
		c.mu.Unlock()
		return
	}
	c.position = c.currentLocked()
	c.playing = false
	c.mu.Unlock()

	c.emit("pause")
}

func (c *clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.playing
}

func (c *clock) addListener(event string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners[event] = append(c.listeners[event], fn)
}

func (c *clock) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.listeners = make(map[string][]func())
}

func (c *clock) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// emit runs listeners synchronously, outside the lock.
func (c *clock) emit(event string) {
	c.mu.Lock()
	listeners := append([]func(){}, c.listeners[event]...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
