package relayclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsutils"
)

const handshakeTimeout = 10 * time.Second

var ErrClosed = errors.New("relay connection closed")

// Handlers receive relay events. Nil handlers are skipped.
type Handlers struct {
	OnParticipantJoined func(ctx context.Context, participantId string)
	OnParticipantLeft   func(ctx context.Context, participantId string)
	OnVideoURL          func(ctx context.Context, url string)
	OnVideoControl      func(ctx context.Context, cmd protocol.PlaybackCommand)
	OnError             func(ctx context.Context, message string)
}

// Client is a participant's connection to the relay.
type Client struct {
	conn   *wsutils.Conn
	logger *slog.Logger
	closed atomic.Bool
}

func Dial(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}

	id := uuid.NewString()
	return &Client{
		conn:   wsutils.NewConn(ws, id),
		logger: logger.With("conn_id", id),
	}, nil
}

func (c *Client) Join(ctx context.Context, roomId, participantId string) error {
	return c.send(ctx, protocol.TypeJoinRoom, protocol.JoinRoomPayload{
		RoomId:        roomId,
		ParticipantId: participantId,
	})
}

func (c *Client) SetVideoURL(ctx context.Context, url string) error {
	return c.send(ctx, protocol.TypeVideoURL, url)
}

func (c *Client) SendPlaybackCommand(ctx context.Context, cmd protocol.PlaybackCommand) error {
	return c.send(ctx, protocol.TypeVideoControl, cmd)
}

func (c *Client) send(ctx context.Context, messageType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "sending message", "type", messageType)
	if err := c.conn.WriteJSON(&protocol.Output{Type: messageType, Payload: payload}); err != nil {
		return fmt.Errorf("failed to send %s: %w", messageType, err)
	}

	return nil
}

// Run reads relay events and dispatches them to h until ctx is done or the
// connection fails. It returns nil when stopped through ctx or Close.
func (c *Client) Run(ctx context.Context, h Handlers) error {
	stop := context.AfterFunc(ctx, func() {
		c.Close()
	})
	defer stop()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || c.closed.Load() {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := c.dispatch(ctx, h, msg); err != nil {
			c.logger.WarnContext(ctx, "failed to handle message", "type", msg.Type, "error", err)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, h Handlers, msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeParticipantJoined:
		return decode(ctx, msg.Payload, h.OnParticipantJoined)
	case protocol.TypeParticipantLeft:
		return decode(ctx, msg.Payload, h.OnParticipantLeft)
	case protocol.TypeVideoURL:
		return decode(ctx, msg.Payload, h.OnVideoURL)
	case protocol.TypeVideoControl:
		return decode(ctx, msg.Payload, h.OnVideoControl)
	case protocol.TypeError:
		return decode(ctx, msg.Payload, func(ctx context.Context, p protocol.ErrorPayload) {
			c.logger.WarnContext(ctx, "relay error", "message", p.Message)
			if h.OnError != nil {
				h.OnError(ctx, p.Message)
			}
		})
	default:
		c.logger.DebugContext(ctx, "ignoring message", "type", msg.Type)
		return nil
	}
}

func decode[T any](ctx context.Context, payload json.RawMessage, fn func(context.Context, T)) error {
	if fn == nil {
		return nil
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	fn(ctx, v)
	return nil
}

func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.conn.WriteClose(websocket.CloseNormalClosure, "")
	return c.conn.Close()
}
