package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsutils"
)

func (c controller) writeToConn(ctx context.Context, conn *wsutils.Conn, output *protocol.Output) error {
	c.logger.DebugContext(ctx, "writing to conn", "conn_id", conn.ID(), "type", output.Type)
	return conn.WriteJSON(output)
}

func (c controller) writeError(ctx context.Context, conn *wsutils.Conn, err error) error {
	return c.writeToConn(ctx, conn, &protocol.Output{
		Type:    protocol.TypeError,
		Payload: protocol.ErrorPayload{Message: err.Error()},
	})
}

func (c controller) broadcast(ctx context.Context, conns []*wsutils.Conn, output *protocol.Output) {
	data, err := json.Marshal(output)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to marshal output", "type", output.Type, "error", err)
		return
	}

	c.broadcastFrame(ctx, conns, output.Type, data)
}

// broadcastRaw frames payload without re-encoding it.
func (c controller) broadcastRaw(ctx context.Context, conns []*wsutils.Conn, messageType string, payload json.RawMessage) {
	typ, err := json.Marshal(messageType)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to marshal message type", "error", err)
		return
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	data := make([]byte, 0, len(typ)+len(payload)+21)
	data = append(data, `{"type":`...)
	data = append(data, typ...)
	data = append(data, `,"payload":`...)
	data = append(data, payload...)
	data = append(data, '}')

	c.broadcastFrame(ctx, conns, messageType, data)
}

// broadcastFrame writes data to every conn. A failed write is logged and
// does not stop the fan-out.
func (c controller) broadcastFrame(ctx context.Context, conns []*wsutils.Conn, messageType string, data []byte) {
	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.metrics.IncDeliveryFailures()
			c.logger.InfoContext(ctx, "failed to write to conn", "conn_id", conn.ID(), "error", err)
			continue
		}
		delivered++
	}

	c.metrics.AddDeliveries(messageType, delivered)
	c.logger.DebugContext(ctx, "broadcasted", "type", messageType, "delivered", delivered, "total", len(conns))
}
