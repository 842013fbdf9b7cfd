package session

import (
	"context"
	"errors"
	"strings"
)

var ErrNoMedia = errors.New("local media unavailable")

type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

func (f Facing) Opposite() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

type Constraints struct {
	Video  bool
	Audio  bool
	Facing Facing
}

// Stream is a local or remote media stream handle.
type Stream interface {
	Id() string
	// Stop stops every track of the stream.
	Stop()
}

type MediaDevices interface {
	GetUserMedia(ctx context.Context, constraints Constraints) (Stream, error)
}

// Call is one pairwise media connection.
type Call interface {
	PeerId() string
	Answer(stream Stream) error
	OnStream(fn func(Stream))
	OnClose(fn func())
	Close() error
}

// Transport is the media-transport layer that places calls by identity.
type Transport interface {
	Call(ctx context.Context, peerId string, stream Stream) (Call, error)
}

type Renderer interface {
	ShowLocal(stream Stream)
	ShowRemote(peerId string, stream Stream)
	RemoveRemote(peerId string)
}

type Relay interface {
	Join(ctx context.Context, roomId, participantId string) error
}

// RoomIdFromPath returns the second segment of a /room/{room} path.
func RoomIdFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}

type State int

const (
	StateInitializing State = iota
	StateMediaReady
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateMediaReady:
		return "media-ready"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "initializing"
	}
}
