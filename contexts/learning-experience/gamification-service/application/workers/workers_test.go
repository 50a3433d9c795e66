package workers

import (
	"context"
	"testing"
	"time"

	"aralify/contexts/learning-experience/gamification-service/adapters/memory"
	"aralify/contexts/learning-experience/gamification-service/ports"
	"aralify/internal/platform/messaging"
	"aralify/internal/shared/events"
)

type recordingCache struct {
	updates chan ports.LeaderboardEntry
	rebuilt [][]ports.LeaderboardEntry
}

func newRecordingCache() *recordingCache {
	return &recordingCache{updates: make(chan ports.LeaderboardEntry, 8)}
}

func (c *recordingCache) UpdateScore(_ context.Context, userID string, xpTotal int, level int) error {
	c.updates <- ports.LeaderboardEntry{UserID: userID, XPTotal: xpTotal, Level: level}
	return nil
}

func (c *recordingCache) TopEntries(_ context.Context, _ int, _ int) ([]ports.LeaderboardEntry, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Rebuild(_ context.Context, entries []ports.LeaderboardEntry) error {
	c.rebuilt = append(c.rebuilt, entries)
	return nil
}

func TestLeaderboardRebuilderRunOnce(t *testing.T) {
	store := memory.NewStore()
	store.SeedUserState(ports.UserGamificationState{UserID: "user-a", XPTotal: 700, Level: 3})
	store.SeedUserState(ports.UserGamificationState{UserID: "user-b", XPTotal: 200, Level: 1})
	cache := newRecordingCache()

	rebuilder := LeaderboardRebuilder{Users: store, Cache: cache, Limit: 100}
	if err := rebuilder.RunOnce(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if len(cache.rebuilt) != 1 {
		t.Fatalf("expected one rebuild, got %d", len(cache.rebuilt))
	}
	entries := cache.rebuilt[0]
	if len(entries) != 2 || entries[0].UserID != "user-a" {
		t.Fatalf("unexpected rebuild contents: %+v", entries)
	}
}

func TestCacheRefresherAppliesXPAwardedEvents(t *testing.T) {
	bus, err := messaging.NewKafka(nil)
	if err != nil {
		t.Fatalf("bus init failed: %v", err)
	}
	cache := newRecordingCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := CacheRefresher{Subscriber: bus, Cache: cache}
	if err := refresher.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err = bus.Publish(ctx, "gamification.xp_awarded", events.Envelope{
		EventID:   "evt-1",
		EventType: "gamification.xp_awarded",
		EntityID:  "user-1",
		Payload: map[string]any{
			"new_total": 1234,
			"new_level": 5,
		},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case update := <-cache.updates:
		if update.UserID != "user-1" || update.XPTotal != 1234 || update.Level != 5 {
			t.Fatalf("unexpected cache update: %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cache update not observed")
	}
}
