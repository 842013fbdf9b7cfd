package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsutils"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidPayload     = errors.New("invalid payload")
)

type HandlerFunc[T any] func(ctx context.Context, conn *wsutils.Conn, input T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

// ErrorHandler is called with every error returned by a route. ServeConn keeps
// reading after it returns.
type ErrorHandler func(ctx context.Context, conn *wsutils.Conn, err error)

type route func(ctx context.Context, conn *wsutils.Conn, payload json.RawMessage) error

type WSRouter struct {
	routes       map[string]route
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{
		routes:       make(map[string]route),
		errorHandler: writeError,
	}
}

func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

func (r *WSRouter) SetErrorHandler(h ErrorHandler) {
	r.errorHandler = h
}

// AddRoute registers handler for messageType. The payload is decoded into T
// before middlewares run.
func AddRoute[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *wsutils.Conn, payload json.RawMessage) error {
		if len(payload) == 0 {
			payload = json.RawMessage("null")
		}

		var input T
		if err := json.Unmarshal(payload, &input); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}

		var next HandlerFunc[any] = func(ctx context.Context, conn *wsutils.Conn, input any) error {
			typed, ok := input.(T)
			if !ok {
				return ErrInvalidPayload
			}
			return handler(ctx, conn, typed)
		}
		for i := len(r.middlewares) - 1; i >= 0; i-- {
			next = r.middlewares[i](next)
		}

		return next(ctx, conn, input)
	}
}

// ServeConn dispatches frames until reading from conn fails. A frame that
// cannot be decoded is reported to the error handler and skipped.
func (r *WSRouter) ServeConn(ctx context.Context, conn *wsutils.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			r.errorHandler(ctx, conn, fmt.Errorf("%w: %w", ErrInvalidPayload, err))
			continue
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			r.errorHandler(msgCtx, conn, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type))
			continue
		}

		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.errorHandler(msgCtx, conn, err)
		}
	}
}

func writeError(_ context.Context, conn *wsutils.Conn, err error) {
	conn.WriteJSON(&protocol.Output{
		Type:    protocol.TypeError,
		Payload: protocol.ErrorPayload{Message: err.Error()},
	})
}
