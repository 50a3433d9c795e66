package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string

	EnableLeaderboardCache  bool
	EnableCacheRefresher    bool
	EnableSwaggerUI         bool
	LeaderboardRebuildEvery time.Duration
	LeaderboardRebuildLimit int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "aralify"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   redisAddr,

		EnableLeaderboardCache:  envBool("ENABLE_LEADERBOARD_CACHE", true),
		EnableCacheRefresher:    envBool("ENABLE_CACHE_REFRESHER", true),
		EnableSwaggerUI:         envBool("ENABLE_SWAGGER_UI", true),
		LeaderboardRebuildEvery: time.Duration(envInt("LEADERBOARD_REBUILD_SECONDS", 300)) * time.Second,
		LeaderboardRebuildLimit: envInt("LEADERBOARD_REBUILD_LIMIT", 500),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
