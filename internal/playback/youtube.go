package playback

import (
	"context"

	"github.com/sharetube/videochat/pkg/protocol"
)

type YouTubeState int

const (
	YouTubeUnstarted YouTubeState = -1
	YouTubeEnded     YouTubeState = 0
	YouTubePlaying   YouTubeState = 1
	YouTubePaused    YouTubeState = 2
	YouTubeBuffering YouTubeState = 3
	YouTubeCued      YouTubeState = 5
)

// YouTubeDriver is the embedded iframe player: seekTo plus playVideo/pauseVideo.
type YouTubeDriver interface {
	SeekTo(seconds float64, allowSeekAhead bool)
	PlayVideo()
	PauseVideo()
	GetCurrentTime() float64
	OnStateChange(fn func(YouTubeState))
	Destroy()
}

type youtubePlayer struct {
	driver YouTubeDriver
}

func (p *youtubePlayer) Kind() Kind {
	return KindYouTube
}

func (p *youtubePlayer) Play(_ context.Context, at float64) error {
	p.driver.SeekTo(at, true)
	p.driver.PlayVideo()
	return nil
}

func (p *youtubePlayer) Pause(_ context.Context, at float64) error {
	p.driver.SeekTo(at, true)
	p.driver.PauseVideo()
	return nil
}

func (p *youtubePlayer) CurrentTime(context.Context) (float64, error) {
	return p.driver.GetCurrentTime(), nil
}

// OnStateChange ignores buffering, cueing and end-of-video states.
func (p *youtubePlayer) OnStateChange(fn func(protocol.Action)) {
	p.driver.OnStateChange(func(state YouTubeState) {
		switch state {
		case YouTubePlaying:
			fn(protocol.ActionPlay)
		case YouTubePaused:
			fn(protocol.ActionPause)
		}
	})
}

func (p *youtubePlayer) Close() error {
	p.driver.Destroy()
	return nil
}
