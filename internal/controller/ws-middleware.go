package controller

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/sharetube/videochat/pkg/ctxlogger"
	"github.com/sharetube/videochat/pkg/wsrouter"
	"github.com/sharetube/videochat/pkg/wsutils"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *wsutils.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *wsutils.Conn, payload any) error {
			messageType := wsrouter.GetMessageTypeFromCtx(ctx)
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
			c.logger.InfoContext(ctx, "websocket message received")
			c.metrics.IncMessages(messageType)

			start := time.Now()

			err := next(ctx, conn, payload)

			c.logger.InfoContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"goroutines", runtime.NumGoroutine(),
			)

			return err
		}
	}
}

func (c controller) wsErrorHandler(ctx context.Context, conn *wsutils.Conn, err error) {
	c.logger.InfoContext(ctx, "failed to handle websocket message", "error", err)
	if err := c.writeError(ctx, conn, err); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
