package playback

import (
	"context"

	"github.com/sharetube/videochat/pkg/protocol"
)

// MediaElement is a raw video element playing a direct file URL.
type MediaElement interface {
	SetCurrentTime(seconds float64)
	CurrentTime() float64
	Play() error
	Pause()
	AddEventListener(event string, fn func())
	Remove()
}

type filePlayer struct {
	element MediaElement
}

func (p *filePlayer) Kind() Kind {
	return KindFile
}

func (p *filePlayer) Play(_ context.Context, at float64) error {
	p.element.SetCurrentTime(at)
	return p.element.Play()
}

func (p *filePlayer) Pause(_ context.Context, at float64) error {
	p.element.SetCurrentTime(at)
	p.element.Pause()
	return nil
}

func (p *filePlayer) CurrentTime(context.Context) (float64, error) {
	return p.element.CurrentTime(), nil
}

func (p *filePlayer) OnStateChange(fn func(protocol.Action)) {
	p.element.AddEventListener("play", func() { fn(protocol.ActionPlay) })
	p.element.AddEventListener("pause", func() { fn(protocol.ActionPause) })
}

func (p *filePlayer) Close() error {
	p.element.Remove()
	return nil
}
