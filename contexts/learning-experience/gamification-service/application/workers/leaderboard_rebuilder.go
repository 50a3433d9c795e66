package workers

import (
	"context"
	"log/slog"

	application "aralify/contexts/learning-experience/gamification-service/application"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// LeaderboardRebuilder periodically reloads the full ranking from the
// store into the cache. Incremental updates from CacheRefresher can drift
// after cache evictions; the rebuild is the authoritative reconciliation.
type LeaderboardRebuilder struct {
	Users  ports.UserStateRepository
	Cache  ports.LeaderboardCache
	Limit  int
	Logger *slog.Logger
}

func (r LeaderboardRebuilder) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)

	limit := r.Limit
	if limit <= 0 {
		limit = 500
	}
	entries, err := r.Users.ListLeaderboard(ctx, limit, 0)
	if err != nil {
		logger.Error("leaderboard rebuild read failed",
			"event", "gamification_leaderboard_rebuild_failed",
			"module", "learning-experience/gamification-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if err := r.Cache.Rebuild(ctx, entries); err != nil {
		logger.Error("leaderboard rebuild write failed",
			"event", "gamification_leaderboard_rebuild_failed",
			"module", "learning-experience/gamification-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("leaderboard cache rebuilt",
		"event", "gamification_leaderboard_rebuilt",
		"module", "learning-experience/gamification-service",
		"layer", "worker",
		"entry_count", len(entries),
	)
	return nil
}
