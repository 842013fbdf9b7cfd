package wsutils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn serializes writes to a websocket connection. gorilla/websocket supports
// one concurrent reader and one concurrent writer.
type Conn struct {
	*websocket.Conn
	id string
	mu sync.Mutex
}

func NewConn(conn *websocket.Conn, id string) *Conn {
	return &Conn{
		Conn: conn,
		id:   id,
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writeLocked(messageType, data)
}

// Batch holds the write lock while fn runs. Frames written through write go out
// before any frame another goroutine writes once Batch has started.
func (c *Conn) Batch(fn func(write func(v any) error) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return c.writeLocked(websocket.TextMessage, data)
	})
}

func (c *Conn) writeLocked(messageType int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.Conn.WriteMessage(messageType, data)
}

func (c *Conn) WriteClose(code int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}

func pongWait(period time.Duration) time.Duration {
	return period * 10 / 9
}

// ExpectPongs sets the read deadline and extends it on every pong. Call it on
// the reading goroutine before the first read.
func (c *Conn) ExpectPongs(period time.Duration) error {
	wait := pongWait(period)
	if err := c.Conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(wait))
	})

	return nil
}

// KeepAlive pings the peer every period, calling onPing after each successful
// ping when it is not nil. It returns when ctx is done or a ping fails.
func (c *Conn) KeepAlive(ctx context.Context, period time.Duration, onPing func()) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.mu.Lock()
			err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				return err
			}
			if onPing != nil {
				onPing()
			}
		}
	}
}
