package headless

import (
	"context"
	"errors"
	"time"

	"github.com/sharetube/videochat/internal/playback"
)

var ErrDestroyed = errors.New("player destroyed")

// YouTube mimics the iframe player API.
type YouTube struct {
	*clock
	VideoId string
}

func (p *YouTube) SeekTo(seconds float64, _ bool) { p.seek(seconds) }
func (p *YouTube) PlayVideo() { p.play() }
func (p *YouTube) PauseVideo() { p.pause() }
func (p *YouTube) GetCurrentTime() float64 { return p.current() }
func (p *YouTube) Destroy() { p.close() }

func (p *YouTube) OnStateChange(fn func(playback.YouTubeState)) {
	p.addListener("play", func() { fn(playback.YouTubePlaying) })
	p.addListener("pause", func() { fn(playback.YouTubePaused) })
}

// Dailymotion mimics the promise-based player API.
type Dailymotion struct {
	*clock
	VideoId string
}

func (p *Dailymotion) Seek(ctx context.Context, seconds float64) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.seek(seconds)
	return nil
}

func (p *Dailymotion) Play(ctx context.Context) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.play()
	return nil
}

func (p *Dailymotion) Pause(ctx context.Context) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.pause()
	return nil
}

func (p *Dailymotion) CurrentTime(ctx context.Context) (float64, error) {
	if err := p.check(ctx); err != nil {
		return 0, err
	}
	return p.current(), nil
}

func (p *Dailymotion) AddEventListener(event string, fn func()) { p.addListener(event, fn) }

func (p *Dailymotion) Destroy() error {
	p.close()
	return nil
}

func (p *Dailymotion) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Closed() {
		return ErrDestroyed
	}
	return nil
}

// Element mimics a video element playing a file URL.
type Element struct {
	*clock
	Src string
}

func (e *Element) SetCurrentTime(seconds float64) { e.seek(seconds) }
func (e *Element) CurrentTime() float64 { return e.current() }
func (e *Element) Pause() { e.pause() }
func (e *Element) AddEventListener(event string, fn func()) { e.addListener(event, fn) }
func (e *Element) Remove() { e.close() }

func (e *Element) Play() error {
	if e.Closed() {
		return ErrDestroyed
	}
	e.play()
	return nil
}

// Factory builds headless drivers. The last driver of each kind is kept for inspection.
type Factory struct {
	Now func() time.Time

	LastYouTube     *YouTube
	LastDailymotion *Dailymotion
	LastElement     *Element
}

func (f *Factory) YouTube(_ context.Context, videoId string) (playback.YouTubeDriver, error) {
	f.LastYouTube = &YouTube{clock: newClock(f.Now), VideoId: videoId}
	return f.LastYouTube, nil
}

func (f *Factory) Dailymotion(ctx context.Context, videoId string) (playback.DailymotionDriver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.LastDailymotion = &Dailymotion{clock: newClock(f.Now), VideoId: videoId}
	return f.LastDailymotion, nil
}

func (f *Factory) File(_ context.Context, url string) (playback.MediaElement, error) {
	f.LastElement = &Element{clock: newClock(f.Now), Src: url}
	return f.LastElement, nil
}
