package playback

import (
	"context"

	"github.com/sharetube/videochat/pkg/protocol"
)

// DailymotionDriver is the promise-based player: seek plus play/pause, with the
// current time only available asynchronously.
type DailymotionDriver interface {
	Seek(ctx context.Context, seconds float64) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	CurrentTime(ctx context.Context) (float64, error)
	AddEventListener(event string, fn func())
	Destroy() error
}

type dailymotionPlayer struct {
	driver DailymotionDriver
}

func (p *dailymotionPlayer) Kind() Kind {
	return KindDailymotion
}

func (p *dailymotionPlayer) Play(ctx context.Context, at float64) error {
	if err := p.driver.Seek(ctx, at); err != nil {
		return err
	}
	return p.driver.Play(ctx)
}

func (p *dailymotionPlayer) Pause(ctx context.Context, at float64) error {
	if err := p.driver.Seek(ctx, at); err != nil {
		return err
	}
	return p.driver.Pause(ctx)
}

func (p *dailymotionPlayer) CurrentTime(ctx context.Context) (float64, error) {
	return p.driver.CurrentTime(ctx)
}

func (p *dailymotionPlayer) OnStateChange(fn func(protocol.Action)) {
	p.driver.AddEventListener("play", func() { fn(protocol.ActionPlay) })
	p.driver.AddEventListener("pause", func() { fn(protocol.ActionPause) })
}

func (p *dailymotionPlayer) Close() error {
	return p.driver.Destroy()
}
