package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "aralify/contexts/learning-experience/gamification-service/application"
	"aralify/contexts/learning-experience/gamification-service/ports"
	"aralify/internal/shared/events"
)

const (
	xpAwardedTopic            = "gamification.xp_awarded"
	defaultCacheConsumerGroup = "gamification-leaderboard-cache-cg"
)

// CacheRefresher keeps the leaderboard cache in step with XP awards.
// It consumes the post-commit xp_awarded events so a cache outage never
// touches the award path.
type CacheRefresher struct {
	Subscriber    ports.EventSubscriber
	Cache         ports.LeaderboardCache
	ConsumerGroup string
	Logger        *slog.Logger
}

type xpAwardedPayload struct {
	NewTotal int `json:"new_total"`
	NewLevel int `json:"new_level"`
}

func (r CacheRefresher) Start(ctx context.Context) error {
	group := r.ConsumerGroup
	if group == "" {
		group = defaultCacheConsumerGroup
	}
	return r.Subscriber.Subscribe(ctx, xpAwardedTopic, group, r.handleXPAwarded)
}

func (r CacheRefresher) handleXPAwarded(ctx context.Context, event events.Envelope) error {
	logger := application.ResolveLogger(r.Logger)

	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	var payload xpAwardedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	if err := r.Cache.UpdateScore(ctx, event.EntityID, payload.NewTotal, payload.NewLevel); err != nil {
		logger.Error("leaderboard cache update failed",
			"event", "gamification_cache_update_failed",
			"module", "learning-experience/gamification-service",
			"layer", "worker",
			"user_id", event.EntityID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
