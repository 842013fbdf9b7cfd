package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/videochat/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	staticPath = configVar[string]{
		envKey:       "SERVER_STATIC_PATH",
		flagKey:      "static-path",
		defaultValue: "",
	}
	wsReadLimit = configVar[int64]{
		envKey:       "SERVER_WS_READ_LIMIT",
		flagKey:      "ws-read-limit",
		defaultValue: 32768,
	}
	wsPingPeriod = configVar[time.Duration]{
		envKey:       "SERVER_WS_PING_PERIOD",
		flagKey:      "ws-ping-period",
		defaultValue: 54 * time.Second,
	}
	presenceStore = configVar[string]{
		envKey:       "SERVER_PRESENCE_STORE",
		flagKey:      "presence-store",
		defaultValue: app.PresenceStoreMemory,
	}
	presenceTTL = configVar[time.Duration]{
		envKey:       "SERVER_PRESENCE_TTL",
		flagKey:      "presence-ttl",
		defaultValue: 10 * time.Minute,
	}
	videoInfoTimeout = configVar[time.Duration]{
		envKey:       "SERVER_VIDEO_INFO_TIMEOUT",
		flagKey:      "video-info-timeout",
		defaultValue: 5 * time.Second,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(staticPath.flagKey, staticPath.defaultValue, "Directory served under /static instead of the bundled assets")
	pflag.Int64(wsReadLimit.flagKey, wsReadLimit.defaultValue, "Maximum websocket frame size in bytes")
	pflag.Duration(wsPingPeriod.flagKey, wsPingPeriod.defaultValue, "Websocket ping period")
	pflag.String(presenceStore.flagKey, presenceStore.defaultValue, "Presence store: memory or redis")
	pflag.Duration(presenceTTL.flagKey, presenceTTL.defaultValue, "Expiration of idle room presence in redis")
	pflag.Duration(videoInfoTimeout.flagKey, videoInfoTimeout.defaultValue, "Timeout of video metadata lookups")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(staticPath.flagKey, staticPath.envKey)
	viper.BindEnv(wsReadLimit.flagKey, wsReadLimit.envKey)
	viper.BindEnv(wsPingPeriod.flagKey, wsPingPeriod.envKey)
	viper.BindEnv(presenceStore.flagKey, presenceStore.envKey)
	viper.BindEnv(presenceTTL.flagKey, presenceTTL.envKey)
	viper.BindEnv(videoInfoTimeout.flagKey, videoInfoTimeout.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(staticPath.flagKey, staticPath.defaultValue)
	viper.SetDefault(wsReadLimit.flagKey, wsReadLimit.defaultValue)
	viper.SetDefault(wsPingPeriod.flagKey, wsPingPeriod.defaultValue)
	viper.SetDefault(presenceStore.flagKey, presenceStore.defaultValue)
	viper.SetDefault(presenceTTL.flagKey, presenceTTL.defaultValue)
	viper.SetDefault(videoInfoTimeout.flagKey, videoInfoTimeout.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		StaticPath:       viper.GetString(staticPath.flagKey),
		WSReadLimit:      viper.GetInt64(wsReadLimit.flagKey),
		WSPingPeriod:     viper.GetDuration(wsPingPeriod.flagKey),
		PresenceStore:    viper.GetString(presenceStore.flagKey),
		PresenceTTL:      viper.GetDuration(presenceTTL.flagKey),
		VideoInfoTimeout: viper.GetDuration(videoInfoTimeout.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
