package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sharetube/videochat/internal/metrics"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(metrics.RequestMiddleware(c.metrics))
	r.Use(cors.AllowAll().Handler)

	r.Get("/", c.landingPage)
	r.Get("/room", c.newRoom)
	r.Get("/room/{room-id}", c.roomPage)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(c.cfg.StaticPath)))
	r.Get("/ws", c.serveWS)
	r.Handle("/metrics", c.metrics.Handler(func() {
		c.metrics.SetRooms(c.roomService.Stats())
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/rooms/{room-id}", c.getRoom)
		r.Get("/video-info", c.getVideoInfo)
	})

	return r
}
