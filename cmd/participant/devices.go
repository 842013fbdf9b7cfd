package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/videochat/internal/session"
)

var errNoDevices = errors.New("no capture devices")

// observerDevices has no camera or microphone; the session runs degraded.
type observerDevices struct{}

func (observerDevices) GetUserMedia(context.Context, session.Constraints) (session.Stream, error) {
	return nil, errNoDevices
}

type observerTransport struct{}

func (observerTransport) Call(context.Context, string, session.Stream) (session.Call, error) {
	return nil, errNoDevices
}

type logRenderer struct {
	logger *slog.Logger
}

func (r logRenderer) ShowLocal(stream session.Stream) {
	r.logger.Info("local stream", "stream_id", stream.Id())
}

func (r logRenderer) ShowRemote(peerId string, stream session.Stream) {
	r.logger.Info("remote stream", "peer_id", peerId, "stream_id", stream.Id())
}

func (r logRenderer) RemoveRemote(peerId string) {
	r.logger.Debug("remote stream removed", "peer_id", peerId)
}
