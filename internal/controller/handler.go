package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/ctxlogger"
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsutils"
)

type roomPageData struct {
	RoomId string
}

func (c controller) landingPage(w http.ResponseWriter, r *http.Request) {
	c.renderPage(w, r, "index.html", nil)
}

func (c controller) newRoom(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/room/"+uuid.NewString(), http.StatusFound)
}

func (c controller) roomPage(w http.ResponseWriter, r *http.Request) {
	c.renderPage(w, r, "room.html", roomPageData{
		RoomId: chi.URLParam(r, "room-id"),
	})
}

func (c controller) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.pages.ExecuteTemplate(w, name, data); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// serveWS runs the relay protocol on one websocket until the peer goes away.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	ws.SetReadLimit(c.cfg.WSReadLimit)

	conn := wsutils.NewConn(ws, uuid.NewString())
	defer conn.Close()

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", conn.ID()))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.disconnect(context.WithoutCancel(ctx), conn)

	if err := conn.ExpectPongs(c.cfg.WSPingPeriod); err != nil {
		c.logger.WarnContext(ctx, "failed to set read deadline", "error", err)
		return
	}

	go func() {
		if err := conn.KeepAlive(ctx, c.cfg.WSPingPeriod, func() { c.refresh(ctx, conn) }); err != nil {
			c.logger.InfoContext(ctx, "keep-alive failed", "error", err)
			conn.Close()
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
			conn.WriteClose(websocket.CloseGoingAway, "server shutting down")
			conn.Close()
		}
	}()

	c.logger.InfoContext(ctx, "websocket connected")
	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logger.InfoContext(ctx, "websocket closed unexpectedly", "error", err)
		} else {
			c.logger.DebugContext(ctx, "websocket closed", "error", err)
		}
	}
}

// refresh keeps the presence of a joined connection alive between joins.
func (c controller) refresh(ctx context.Context, conn *wsutils.Conn) {
	if err := c.roomService.Refresh(ctx, &room.RefreshParams{Conn: conn}); err != nil && !errors.Is(err, room.ErrNotJoined) {
		c.logger.WarnContext(ctx, "failed to refresh presence", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, conn *wsutils.Conn) {
	disconnectResp, err := c.roomService.Disconnect(ctx, &room.DisconnectParams{
		Conn: conn,
	})
	if err != nil {
		if !errors.Is(err, room.ErrNotJoined) {
			c.logger.WarnContext(ctx, "failed to disconnect", "error", err)
		}
		return
	}

	c.logger.InfoContext(ctx, "participant left",
		"room_id", disconnectResp.RoomId,
		"participant_id", disconnectResp.ParticipantId,
	)

	c.broadcast(ctx, disconnectResp.Conns, &protocol.Output{
		Type:    protocol.TypeParticipantLeft,
		Payload: disconnectResp.ParticipantId,
	})
}
