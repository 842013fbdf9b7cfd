package wsrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

func serve(t *testing.T, r *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ws, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		conn := wsutils.NewConn(ws, "conn")
		defer conn.Close()
		r.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	client.SetReadDeadline(time.Now().Add(5 * time.Second))

	return client
}

func TestRouteDecodesPayloadAndRunsMiddlewares(t *testing.T) {
	r := New()

	var order []string
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *wsutils.Conn, input any) error {
			order = append(order, "outer:"+GetMessageTypeFromCtx(ctx))
			return next(ctx, conn, input)
		}
	}, func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *wsutils.Conn, input any) error {
			order = append(order, "inner")
			return next(ctx, conn, input)
		}
	})
	AddRoute(r, "echo", func(ctx context.Context, conn *wsutils.Conn, input echoInput) error {
		order = append(order, "handler")
		return conn.WriteJSON(&protocol.Output{Type: "echo", Payload: map[string]any{
			"text":  input.Text,
			"order": order,
		}})
	})

	client := serve(t, r)
	require.NoError(t, client.WriteJSON(map[string]any{"type": "echo", "payload": map[string]string{"text": "hi"}}))

	var out struct {
		Type    string `json:"type"`
		Payload struct {
			Text  string   `json:"text"`
			Order []string `json:"order"`
		} `json:"payload"`
	}
	require.NoError(t, client.ReadJSON(&out))
	assert.Equal(t, "echo", out.Type)
	assert.Equal(t, "hi", out.Payload.Text)
	assert.Equal(t, []string{"outer:echo", "inner", "handler"}, out.Payload.Order)
}

func TestUnknownTypeWritesErrorAndKeepsReading(t *testing.T) {
	r := New()
	AddRoute(r, "raw", func(ctx context.Context, conn *wsutils.Conn, input json.RawMessage) error {
		return conn.WriteJSON(&protocol.Output{Type: "raw", Payload: input})
	})

	client := serve(t, r)
	require.NoError(t, client.WriteJSON(map[string]any{"type": "nope"}))

	var errOut protocol.Message
	require.NoError(t, client.ReadJSON(&errOut))
	assert.Equal(t, protocol.TypeError, errOut.Type)
	assert.Contains(t, string(errOut.Payload), "unknown message type")

	require.NoError(t, client.WriteJSON(map[string]any{"type": "raw", "payload": []int{1, 2}}))
	var rawOut protocol.Message
	require.NoError(t, client.ReadJSON(&rawOut))
	assert.Equal(t, "raw", rawOut.Type)
	assert.JSONEq(t, `[1,2]`, string(rawOut.Payload))
}

func TestInvalidPayloadIsReported(t *testing.T) {
	r := New()
	AddRoute(r, "echo", func(ctx context.Context, conn *wsutils.Conn, input echoInput) error {
		return nil
	})

	client := serve(t, r)
	require.NoError(t, client.WriteJSON(map[string]any{"type": "echo", "payload": "not-an-object"}))

	var errOut protocol.Message
	require.NoError(t, client.ReadJSON(&errOut))
	assert.Equal(t, protocol.TypeError, errOut.Type)
	assert.Contains(t, string(errOut.Payload), ErrInvalidPayload.Error())
}

func TestMalformedFrameIsReportedAndSkipped(t *testing.T) {
	r := New()
	AddRoute(r, "raw", func(ctx context.Context, conn *wsutils.Conn, input json.RawMessage) error {
		return conn.WriteJSON(&protocol.Output{Type: "raw", Payload: input})
	})

	client := serve(t, r)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"raw","payload":{oops}`)))

	var errOut protocol.Message
	require.NoError(t, client.ReadJSON(&errOut))
	assert.Equal(t, protocol.TypeError, errOut.Type)
	assert.Contains(t, string(errOut.Payload), ErrInvalidPayload.Error())

	require.NoError(t, client.WriteJSON(map[string]any{"type": "raw", "payload": "still here"}))
	var rawOut protocol.Message
	require.NoError(t, client.ReadJSON(&rawOut))
	assert.Equal(t, "raw", rawOut.Type)
	assert.JSONEq(t, `"still here"`, string(rawOut.Payload))
}
