package controller

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/videochat/internal/metrics"
	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/validator"
	"github.com/sharetube/videochat/pkg/videodata"
	"github.com/sharetube/videochat/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	Relay(context.Context, *room.RelayParams) (room.RelayResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
	Refresh(context.Context, *room.RefreshParams) error
	GetRoom(context.Context, string) (room.Room, error)
	Stats() (rooms, conns int)
}

type iVideoDataClient interface {
	YouTube(ctx context.Context, videoId string) (*videodata.VideoData, error)
	Dailymotion(ctx context.Context, videoId string) (*videodata.VideoData, error)
}

type Config struct {
	StaticPath   string
	WSReadLimit  int64
	WSPingPeriod time.Duration
}

type controller struct {
	roomService iRoomService
	videoData   iVideoDataClient
	metrics     *metrics.Metrics
	upgrader    websocket.Upgrader
	wsRouter    *wsrouter.WSRouter
	validate    *validator.Validator
	pages       *template.Template
	cfg         *Config
	logger      *slog.Logger
	done        chan struct{}
	closeOnce   *sync.Once
}

func NewController(roomService iRoomService, videoData iVideoDataClient, m *metrics.Metrics, cfg *Config, logger *slog.Logger) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		videoData:   videoData,
		metrics:     m,
		validate:    validator.NewValidator(),
		pages:       template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		cfg:         cfg,
		logger:      logger,
		done:        make(chan struct{}),
		closeOnce:   &sync.Once{},
	}
	c.wsRouter = c.getWSRouter()

	return &c
}

// Shutdown closes every open websocket with a going-away frame. Register it
// with http.Server.RegisterOnShutdown: Shutdown does not wait for hijacked
// connections.
func (c controller) Shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c controller) generateTimeBasedId() string {
	return uuid.Must(uuid.NewV7()).String()
}
