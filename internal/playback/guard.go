package playback

import (
	"sync"
	"time"
)

const DefaultSuppressWindow = 500 * time.Millisecond

type GuardState int

const (
	GuardIdle GuardState = iota
	GuardApplying
	GuardSuppressing
)

func (s GuardState) String() string {
	switch s {
	case GuardApplying:
		return "applying"
	case GuardSuppressing:
		return "suppressing"
	default:
		return "idle"
	}
}

// Guard suppresses outbound playback events while a remote command is being
// applied and for a trailing window after it completes.
type Guard struct {
	mu       sync.Mutex
	window   time.Duration
	now      func() time.Time
	applying int
	until    time.Time
}

// NewGuard returns an idle guard. A nil now uses the wall clock.
func NewGuard(window time.Duration, now func() time.Time) *Guard {
	if window <= 0 {
		window = DefaultSuppressWindow
	}
	if now == nil {
		now = time.Now
	}

	return &Guard{
		window: window,
		now:    now,
	}
}

// Begin engages the guard. The returned done starts the trailing window and is
// safe to call more than once.
func (g *Guard) Begin() (done func()) {
	g.mu.Lock()
	g.applying++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(g.end)
	}
}

func (g *Guard) end() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.applying--
	if deadline := g.now().Add(g.window); deadline.After(g.until) {
		g.until = deadline
	}
}

func (g *Guard) Suppressed() bool {
	return g.State() != GuardIdle
}

func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.applying > 0 {
		return GuardApplying
	}

	if g.now().Before(g.until) {
		return GuardSuppressing
	}

	return GuardIdle
}
