package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sharetube/videochat/pkg/protocol"
)

const notifyTimeout = 5 * time.Second

// Emitter sends outbound shared-video messages to the room.
type Emitter interface {
	SetVideoURL(ctx context.Context, url string) error
	SendPlaybackCommand(ctx context.Context, cmd protocol.PlaybackCommand) error
}

// Syncer keeps the local player in step with the room.
type Syncer struct {
	emitter Emitter
	factory Factory
	guard   *Guard
	logger  *slog.Logger

	mu         sync.Mutex
	player     Player
	source     Source
	generation uint64
}

func NewSyncer(emitter Emitter, factory Factory, guard *Guard, logger *slog.Logger) *Syncer {
	if guard == nil {
		guard = NewGuard(DefaultSuppressWindow, nil)
	}

	return &Syncer{
		emitter: emitter,
		factory: factory,
		guard:   guard,
		logger:  logger,
	}
}

// SubmitURL renders url locally and shares it with the room.
func (s *Syncer) SubmitURL(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	var errs []error
	if err := s.display(ctx, url); err != nil {
		errs = append(errs, err)
	}

	if err := s.emitter.SetVideoURL(ctx, url); err != nil {
		errs = append(errs, fmt.Errorf("failed to send video url: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Syncer) HandleRemoteURL(ctx context.Context, url string) error {
	return s.display(ctx, strings.TrimSpace(url))
}

// HandleRemoteCommand applies cmd to the active player with the guard engaged.
func (s *Syncer) HandleRemoteCommand(ctx context.Context, cmd protocol.PlaybackCommand) error {
	s.mu.Lock()
	player := s.player
	s.mu.Unlock()

	if player == nil {
		s.logger.DebugContext(ctx, "dropping playback command", "action", cmd.Action, "error", ErrNoPlayer)
		return ErrNoPlayer
	}

	done := s.guard.Begin()
	defer done()

	if err := Apply(ctx, player, cmd); err != nil {
		return fmt.Errorf("failed to apply playback command: %w", err)
	}

	return nil
}

func (s *Syncer) Source() (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.source, s.player != nil
}

func (s *Syncer) Player() Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.player
}

func (s *Syncer) Close() error {
	s.mu.Lock()
	player := s.player
	s.player = nil
	s.generation++
	s.mu.Unlock()

	if player != nil {
		return player.Close()
	}

	return nil
}

// display replaces the active player with one for url.
func (s *Syncer) display(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	src := ParseSource(url)

	s.mu.Lock()
	old := s.player
	s.player = nil
	s.source = src
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close previous player", "error", err)
		}
	}

	player, err := New(ctx, s.factory, src)
	if err != nil {
		return fmt.Errorf("failed to display %s video: %w", src.Kind, err)
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "discarding superseded player", "url", url)
		return player.Close()
	}
	s.player = player
	s.mu.Unlock()

	player.OnStateChange(func(action protocol.Action) {
		s.onLocalStateChange(generation, player, action)
	})

	s.logger.InfoContext(ctx, "displaying video", "kind", src.Kind.String(), "url", url)
	return nil
}

func (s *Syncer) onLocalStateChange(generation uint64, player Player, action protocol.Action) {
	if s.guard.Suppressed() {
		s.logger.Debug("suppressed playback echo", "action", action)
		return
	}

	s.mu.Lock()
	current := generation == s.generation
	s.mu.Unlock()
	if !current {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	at, err := player.CurrentTime(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read current time", "error", err)
		return
	}

	cmd := protocol.PlaybackCommand{Action: action, CurrentTime: at}
	if err := s.emitter.SendPlaybackCommand(ctx, cmd); err != nil {
		s.logger.WarnContext(ctx, "failed to send playback command", "error", err)
	}
}
