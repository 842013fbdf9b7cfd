package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/videochat/internal/app"
	"github.com/sharetube/videochat/internal/playback"
	"github.com/sharetube/videochat/internal/playback/headless"
	"github.com/sharetube/videochat/internal/relayclient"
	"github.com/sharetube/videochat/internal/session"
	"github.com/sharetube/videochat/pkg/protocol"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	serverURL = configVar[string]{
		envKey:       "PARTICIPANT_SERVER_URL",
		flagKey:      "server-url",
		defaultValue: "ws://localhost:80/ws",
	}
	roomId = configVar[string]{
		envKey:       "PARTICIPANT_ROOM",
		flagKey:      "room",
		defaultValue: "",
	}
	participantId = configVar[string]{
		envKey:       "PARTICIPANT_ID",
		flagKey:      "participant-id",
		defaultValue: "",
	}
	videoURL = configVar[string]{
		envKey:       "PARTICIPANT_VIDEO_URL",
		flagKey:      "video-url",
		defaultValue: "",
	}
	logLevel = configVar[string]{
		envKey:       "PARTICIPANT_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	suppressWindow = configVar[time.Duration]{
		envKey:       "PARTICIPANT_SUPPRESS_WINDOW",
		flagKey:      "suppress-window",
		defaultValue: playback.DefaultSuppressWindow,
	}
)

type config struct {
	ServerURL      string
	RoomId         string
	ParticipantId  string
	VideoURL       string
	LogLevel       string
	SuppressWindow time.Duration
}

func loadConfig() *config {
	pflag.String(serverURL.flagKey, serverURL.defaultValue, "Relay websocket url")
	pflag.String(roomId.flagKey, roomId.defaultValue, "Room id or /room/{id} path")
	pflag.String(participantId.flagKey, participantId.defaultValue, "Participant id, random when empty")
	pflag.String(videoURL.flagKey, videoURL.defaultValue, "Video url to share after joining")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Duration(suppressWindow.flagKey, suppressWindow.defaultValue, "Echo suppression window after a remote command")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(serverURL.flagKey, serverURL.envKey)
	viper.BindEnv(roomId.flagKey, roomId.envKey)
	viper.BindEnv(participantId.flagKey, participantId.envKey)
	viper.BindEnv(videoURL.flagKey, videoURL.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(suppressWindow.flagKey, suppressWindow.envKey)

	viper.SetDefault(serverURL.flagKey, serverURL.defaultValue)
	viper.SetDefault(roomId.flagKey, roomId.defaultValue)
	viper.SetDefault(participantId.flagKey, participantId.defaultValue)
	viper.SetDefault(videoURL.flagKey, videoURL.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(suppressWindow.flagKey, suppressWindow.defaultValue)

	return &config{
		ServerURL:      viper.GetString(serverURL.flagKey),
		RoomId:         viper.GetString(roomId.flagKey),
		ParticipantId:  viper.GetString(participantId.flagKey),
		VideoURL:       viper.GetString(videoURL.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		SuppressWindow: viper.GetDuration(suppressWindow.flagKey),
	}
}

func run(ctx context.Context, cfg *config) error {
	logger, err := app.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	room := cfg.RoomId
	if id := session.RoomIdFromPath(room); id != "" {
		room = id
	}
	if room == "" {
		return errors.New("room is required")
	}

	identity := cfg.ParticipantId
	if identity == "" {
		identity = uuid.NewString()
	}

	client, err := relayclient.Dial(ctx, cfg.ServerURL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	controller := session.NewController(room, observerDevices{}, observerTransport{}, client, logRenderer{logger: logger}, logger)
	defer controller.Close(context.WithoutCancel(ctx))

	syncer := playback.NewSyncer(client, &headless.Factory{}, playback.NewGuard(cfg.SuppressWindow, nil), logger)
	defer syncer.Close()

	if err := controller.Start(ctx); err != nil {
		logger.InfoContext(ctx, "running as observer", "error", err)
	}

	if err := controller.HandleIdentity(ctx, identity); err != nil {
		return err
	}

	if cfg.VideoURL != "" {
		if err := syncer.SubmitURL(ctx, cfg.VideoURL); err != nil {
			logger.WarnContext(ctx, "failed to share video", "error", err)
		}
	}

	return client.Run(ctx, relayclient.Handlers{
		OnParticipantJoined: controller.HandleParticipantJoined,
		OnParticipantLeft:   controller.HandleParticipantLeft,
		OnVideoURL: func(ctx context.Context, url string) {
			if err := syncer.HandleRemoteURL(ctx, url); err != nil {
				logger.WarnContext(ctx, "failed to display video", "error", err)
			}
		},
		OnVideoControl: func(ctx context.Context, cmd protocol.PlaybackCommand) {
			if err := syncer.HandleRemoteCommand(ctx, cmd); err != nil {
				logger.InfoContext(ctx, "playback command not applied", "error", err)
				return
			}
			if player := syncer.Player(); player != nil {
				at, _ := player.CurrentTime(ctx)
				logger.InfoContext(ctx, "playback synced", "action", cmd.Action, "current_time", at)
			}
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg := loadConfig()
	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatal(fmt.Errorf("participant: %w", err))
	}
}
