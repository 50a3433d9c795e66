package redisadapter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"aralify/contexts/learning-experience/gamification-service/ports"

	"github.com/redis/go-redis/v9"
)

const (
	keyLeaderboardXP    = "gamification:leaderboard:xp"
	keyLeaderboardLevel = "gamification:leaderboard:level"

	leaderboardTTL = 24 * time.Hour
)

// LeaderboardCache ranks users in a Redis sorted set keyed by XP total.
// Levels ride along in a hash so reads never touch Postgres. An empty
// ZSET reports warm=false and callers fall back to the store.
type LeaderboardCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewLeaderboardCache(client *redis.Client, logger *slog.Logger) *LeaderboardCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardCache{
		client: client,
		logger: logger,
	}
}

func (c *LeaderboardCache) UpdateScore(ctx context.Context, userID string, xpTotal int, level int) error {
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, keyLeaderboardXP, redis.Z{
		Score:  float64(xpTotal),
		Member: userID,
	})
	pipe.HSet(ctx, keyLeaderboardLevel, userID, level)
	pipe.Expire(ctx, keyLeaderboardXP, leaderboardTTL)
	pipe.Expire(ctx, keyLeaderboardLevel, leaderboardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return c.logError("gamification_cache_update_score_failed", err, "user_id", userID)
	}
	return nil
}

func (c *LeaderboardCache) TopEntries(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, bool, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	total, err := c.client.ZCard(ctx, keyLeaderboardXP).Result()
	if err != nil {
		return nil, false, c.logError("gamification_cache_top_entries_failed", err)
	}
	if total == 0 {
		return nil, false, nil
	}

	start := int64(offset)
	end := start + int64(limit) - 1
	scored, err := c.client.ZRevRangeWithScores(ctx, keyLeaderboardXP, start, end).Result()
	if err != nil {
		return nil, false, c.logError("gamification_cache_top_entries_failed", err)
	}
	if len(scored) == 0 {
		return []ports.LeaderboardEntry{}, true, nil
	}

	userIDs := make([]string, 0, len(scored))
	for _, member := range scored {
		userID, ok := member.Member.(string)
		if !ok {
			continue
		}
		userIDs = append(userIDs, userID)
	}
	levels, err := c.client.HMGet(ctx, keyLeaderboardLevel, userIDs...).Result()
	if err != nil {
		return nil, false, c.logError("gamification_cache_top_entries_failed", err)
	}

	entries := make([]ports.LeaderboardEntry, 0, len(scored))
	for i, member := range scored {
		userID, ok := member.Member.(string)
		if !ok {
			continue
		}
		level := 0
		if i < len(levels) && levels[i] != nil {
			if raw, ok := levels[i].(string); ok {
				level, _ = strconv.Atoi(raw)
			}
		}
		entries = append(entries, ports.LeaderboardEntry{
			UserID:  userID,
			XPTotal: int(member.Score),
			Level:   level,
			Rank:    offset + i + 1,
		})
	}
	return entries, true, nil
}

// Rebuild swaps in a full snapshot inside one MULTI/EXEC pipeline so
// readers never observe a half-cleared ranking.
func (c *LeaderboardCache) Rebuild(ctx context.Context, entries []ports.LeaderboardEntry) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyLeaderboardXP, keyLeaderboardLevel)

	if len(entries) > 0 {
		members := make([]redis.Z, 0, len(entries))
		levels := make(map[string]interface{}, len(entries))
		for _, entry := range entries {
			members = append(members, redis.Z{
				Score:  float64(entry.XPTotal),
				Member: entry.UserID,
			})
			levels[entry.UserID] = entry.Level
		}
		pipe.ZAdd(ctx, keyLeaderboardXP, members...)
		pipe.HSet(ctx, keyLeaderboardLevel, levels)
		pipe.Expire(ctx, keyLeaderboardXP, leaderboardTTL)
		pipe.Expire(ctx, keyLeaderboardLevel, leaderboardTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return c.logError("gamification_cache_rebuild_failed", err, "entry_count", len(entries))
	}
	return nil
}

func (c *LeaderboardCache) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "learning-experience/gamification-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	c.logger.Error("leaderboard cache operation failed", fields...)
	return err
}

var _ ports.LeaderboardCache = (*LeaderboardCache)(nil)
