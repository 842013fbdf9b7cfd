package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/videochat/pkg/protocol"
)

var (
	ErrNoPlayer      = errors.New("no active player")
	ErrUnknownAction = errors.New("unknown playback action")
)

// Player is the capability every backend is normalized to.
type Player interface {
	Kind() Kind
	// Play seeks to at and starts playback.
	Play(ctx context.Context, at float64) error
	// Pause seeks to at and pauses playback.
	Pause(ctx context.Context, at float64) error
	CurrentTime(ctx context.Context) (float64, error)
	// OnStateChange registers fn for native play/pause notifications.
	OnStateChange(fn func(protocol.Action))
	Close() error
}

// Factory constructs the native driver of each backend.
type Factory interface {
	YouTube(ctx context.Context, videoId string) (YouTubeDriver, error)
	Dailymotion(ctx context.Context, videoId string) (DailymotionDriver, error)
	File(ctx context.Context, url string) (MediaElement, error)
}

// New builds the player for src, dispatching on its kind.
func New(ctx context.Context, factory Factory, src Source) (Player, error) {
	switch src.Kind {
	case KindYouTube:
		driver, err := factory.YouTube(ctx, src.VideoId)
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube player: %w", err)
		}
		return &youtubePlayer{driver: driver}, nil
	case KindDailymotion:
		driver, err := factory.Dailymotion(ctx, src.VideoId)
		if err != nil {
			return nil, fmt.Errorf("failed to create dailymotion player: %w", err)
		}
		return &dailymotionPlayer{driver: driver}, nil
	case KindFile:
		element, err := factory.File(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create media element: %w", err)
		}
		return &filePlayer{element: element}, nil
	default:
		return nil, fmt.Errorf("unsupported source kind %d", src.Kind)
	}
}

// Apply seeks to the command's time and then plays or pauses.
func Apply(ctx context.Context, player Player, cmd protocol.PlaybackCommand) error {
	switch cmd.Action {
	case protocol.ActionPlay:
		return player.Play(ctx, cmd.CurrentTime)
	case protocol.ActionPause:
		return player.Pause(ctx, cmd.CurrentTime)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}
