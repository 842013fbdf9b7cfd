package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/videochat/internal/controller"
	"github.com/sharetube/videochat/internal/metrics"
	connInmemory "github.com/sharetube/videochat/internal/repository/connection/inmemory"
	"github.com/sharetube/videochat/internal/repository/presence"
	presenceInmemory "github.com/sharetube/videochat/internal/repository/presence/inmemory"
	presenceRedis "github.com/sharetube/videochat/internal/repository/presence/redis"
	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/ctxlogger"
	"github.com/sharetube/videochat/pkg/redisclient"
	"github.com/sharetube/videochat/pkg/validator"
	"github.com/sharetube/videochat/pkg/videodata"
)

const (
	PresenceStoreMemory = "memory"
	PresenceStoreRedis  = "redis"
)

type AppConfig struct {
	Host             string        `json:"host" validate:"required"`
	Port             int           `json:"port" validate:"gt=0,max=65535"`
	LogLevel         string        `json:"log_level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	StaticPath       string        `json:"static_path" validate:"omitempty,dir"`
	WSReadLimit      int64         `json:"ws_read_limit" validate:"gt=0"`
	WSPingPeriod     time.Duration `json:"ws_ping_period" validate:"gt=0"`
	PresenceStore    string        `json:"presence_store" validate:"oneof=memory redis"`
	PresenceTTL      time.Duration `json:"presence_ttl" validate:"gt=0,gtfield=WSPingPeriod"`
	VideoInfoTimeout time.Duration `json:"video_info_timeout" validate:"gt=0"`
	RedisPort        int           `json:"redis_port" validate:"required_if=PresenceStore redis"`
	RedisHost        string        `json:"redis_host" validate:"required_if=PresenceStore redis"`
	RedisPassword    string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if validationErrors, ok := validator.NewValidator().Validate(cfg); !ok {
		return fmt.Errorf("invalid config: %w", validator.Err(validationErrors))
	}

	return nil
}

func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(h), nil
}

type components struct {
	handler  http.Handler
	shutdown func()
	close    func() error
}

// newComponents wires repositories, the room service and the controller.
func newComponents(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (*components, error) {
	srv := &components{close: func() error { return nil }}

	var presenceRepo presence.Repo
	switch cfg.PresenceStore {
	case PresenceStoreRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		srv.close = rc.Close
		presenceRepo = presenceRedis.NewRepo(rc, cfg.PresenceTTL, logger)
	default:
		presenceRepo = presenceInmemory.NewRepo(logger)
	}

	roomService := room.NewService(connInmemory.NewRepo(logger), presenceRepo, logger)
	c := controller.NewController(roomService, videodata.New(cfg.VideoInfoTimeout), metrics.New(), &controller.Config{
		StaticPath:   cfg.StaticPath,
		WSReadLimit:  cfg.WSReadLimit,
		WSPingPeriod: cfg.WSPingPeriod,
	}, logger)

	srv.handler = c.GetMux()
	srv.shutdown = c.Shutdown
	return srv, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	srv, err := newComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: srv.handler}
	server.RegisterOnShutdown(srv.shutdown)

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "presence_store", cfg.PresenceStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}
