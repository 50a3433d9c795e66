package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gamification "aralify/contexts/learning-experience/gamification-service"
	postgresadapter "aralify/contexts/learning-experience/gamification-service/adapters/postgres"
	redisadapter "aralify/contexts/learning-experience/gamification-service/adapters/redis"
	workerapp "aralify/contexts/learning-experience/gamification-service/application/workers"
	"aralify/contexts/learning-experience/gamification-service/ports"
	"aralify/internal/platform/cache"
	"aralify/internal/platform/config"
	"aralify/internal/platform/db"
	"aralify/internal/platform/httpserver"
	"aralify/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	postgres  *db.Postgres
	redis     *cache.Redis
	refresher workerapp.CacheRefresher
	useCache  bool
	logger    *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *cache.Redis
	rebuilder    workerapp.LeaderboardRebuilder
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(logger)
	if err != nil {
		return nil, err
	}

	var redisConn *cache.Redis
	var leaderboardCache ports.LeaderboardCache
	if cfg.EnableLeaderboardCache {
		redisConn, err = cache.Connect(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		leaderboardCache = redisadapter.NewLeaderboardCache(redisConn.Client, logger)
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := gamification.NewModule(gamification.Dependencies{
		Users:        repo,
		Streaks:      repo,
		Achievements: repo,
		Badges:       repo,
		Activities:   repo,
		Stats:        repo,
		Cache:        leaderboardCache,
		Events:       kafka,
		Clock:        postgresadapter.SystemClock{},
		IDGenerator:  postgresadapter.UUIDGenerator{},
		Logger:       logger,
	})

	app := &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), cfg.EnableSwaggerUI),
		postgres: pg,
		redis:    redisConn,
		useCache: cfg.EnableLeaderboardCache && cfg.EnableCacheRefresher,
		logger:   logger,
	}
	if app.useCache {
		app.refresher = workerapp.CacheRefresher{
			Subscriber: kafka,
			Cache:      leaderboardCache,
			Logger:     logger,
		}
	}
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	redisConn, err := cache.Connect(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		redis:    redisConn,
		rebuilder: workerapp.LeaderboardRebuilder{
			Users:  repo,
			Cache:  redisadapter.NewLeaderboardCache(redisConn.Client, logger),
			Limit:  cfg.LeaderboardRebuildLimit,
			Logger: logger,
		},
		pollInterval: cfg.LeaderboardRebuildEvery,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.useCache {
		if err := a.refresher.Start(ctx); err != nil {
			return err
		}
	}
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.rebuilder.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
