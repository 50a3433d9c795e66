package application

import (
	"context"
	"testing"
	"time"

	"aralify/contexts/learning-experience/gamification-service/adapters/memory"
	"aralify/contexts/learning-experience/gamification-service/domain/criteria"
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

func newAchievementFixture(t *testing.T) (AchievementService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedUser("user-1")
	store.SeedAchievements([]ports.Achievement{
		{
			AchievementID: "ach-first-lesson",
			Slug:          "first-lesson",
			Title:         "First Steps",
			Category:      "learning",
			XPReward:      25,
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 1},
		},
		{
			AchievementID: "ach-ten-lessons",
			Slug:          "ten-lessons",
			Title:         "Getting Serious",
			Category:      "learning",
			XPReward:      100,
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 10},
		},
		{
			AchievementID: "ach-early-bird",
			Slug:          "early-bird",
			Title:         "Early Bird",
			Category:      "habits",
			XPReward:      50,
			IsSecret:      true,
			Criteria:      criteria.Criteria{Kind: criteria.KindTimeOfDay, HourStart: 5, HourEnd: 8},
		},
	})
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := AchievementService{
		Achievements: store,
		Stats:        store,
		Activities:   store,
		XP: XPService{
			Users: store,
			Clock: clock,
			IDGen: store,
		},
		Clock: clock,
		IDGen: store,
	}
	return service, store
}

func TestEvaluateUnlocksAndPaysOnce(t *testing.T) {
	service, store := newAchievementFixture(t)
	ctx := context.Background()
	store.SeedStats("user-1", stats.Snapshot{LessonsCompleted: 1})

	evaluations, err := service.Evaluate(ctx, "user-1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	unlockedNow := 0
	for _, evaluation := range evaluations {
		if evaluation.NewlyUnlocked {
			unlockedNow++
			if evaluation.Achievement.Slug != "first-lesson" {
				t.Fatalf("unexpected unlock: %s", evaluation.Achievement.Slug)
			}
			if evaluation.XPAwarded != 25 {
				t.Fatalf("expected 25 xp for the unlock, got %d", evaluation.XPAwarded)
			}
		}
	}
	if unlockedNow != 1 {
		t.Fatalf("expected exactly one new unlock, got %d", unlockedNow)
	}

	// A second pass must not unlock or pay again.
	evaluations, err = service.Evaluate(ctx, "user-1")
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	for _, evaluation := range evaluations {
		if evaluation.NewlyUnlocked {
			t.Fatalf("re-evaluation must not re-unlock %s", evaluation.Achievement.Slug)
		}
	}
	state, err := store.GetUserState(ctx, "user-1")
	if err != nil {
		t.Fatalf("state read failed: %v", err)
	}
	if state.XPTotal != 25 {
		t.Fatalf("reward must be paid exactly once, total %d", state.XPTotal)
	}
}

func TestEvaluateReportsProgressForLocked(t *testing.T) {
	service, store := newAchievementFixture(t)
	store.SeedStats("user-1", stats.Snapshot{LessonsCompleted: 4})

	evaluations, err := service.Evaluate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	for _, evaluation := range evaluations {
		if evaluation.Achievement.Slug != "ten-lessons" {
			continue
		}
		if evaluation.IsUnlocked {
			t.Fatalf("4 of 10 lessons must stay locked")
		}
		if evaluation.CurrentValue != 4 || evaluation.TargetValue != 10 {
			t.Fatalf("unexpected progress: %+v", evaluation)
		}
	}
}

func TestListHidesLockedSecrets(t *testing.T) {
	service, store := newAchievementFixture(t)
	ctx := context.Background()
	store.SeedStats("user-1", stats.Snapshot{})

	items, err := service.List(ctx, "user-1", ListAchievementsOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range items {
		if item.Achievement.Slug == "early-bird" {
			t.Fatalf("locked secret achievement must be hidden")
		}
	}

	// Once unlocked it becomes visible.
	var bird stats.Snapshot
	bird.CompletionsByHour[6] = 1
	store.SeedStats("user-1", bird)
	if _, err := service.Evaluate(ctx, "user-1"); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	items, err = service.List(ctx, "user-1", ListAchievementsOptions{})
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	seen := false
	for _, item := range items {
		if item.Achievement.Slug == "early-bird" && item.IsUnlocked {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("unlocked secret achievement must be listed")
	}
}

func TestUnlockedNonCountCriteriaReportRealTarget(t *testing.T) {
	service, store := newAchievementFixture(t)
	ctx := context.Background()
	store.SeedAchievements([]ports.Achievement{
		{
			AchievementID: "ach-level-five",
			Slug:          "level-five",
			Title:         "High Five",
			Category:      "progression",
			XPReward:      75,
			Criteria:      criteria.Criteria{Kind: criteria.KindLevel, Level: 5},
		},
		{
			AchievementID: "ach-week-streak",
			Slug:          "week-streak",
			Title:         "Full Week",
			Category:      "habits",
			XPReward:      50,
			Criteria:      criteria.Criteria{Kind: criteria.KindStreak, Days: 7},
		},
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"ach-level-five", "ach-week-streak"} {
		if _, err := store.UnlockAchievement(ctx, ports.AchievementUnlock{
			UserID:        "user-1",
			AchievementID: id,
			UnlockedAt:    now,
		}); err != nil {
			t.Fatalf("seed unlock failed: %v", err)
		}
	}
	// The live streak has since lapsed below the unlock threshold.
	store.SeedStats("user-1", stats.Snapshot{})

	items, err := service.List(ctx, "user-1", ListAchievementsOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	targets := map[string]int{"level-five": 5, "week-streak": 7}
	for _, item := range items {
		want, ok := targets[item.Achievement.Slug]
		if !ok {
			continue
		}
		if !item.IsUnlocked || item.Progress != 100 {
			t.Fatalf("seeded unlock must report full progress: %+v", item)
		}
		if item.TargetValue != want || item.CurrentValue != want {
			t.Fatalf("%s expected %d/%d, got %d/%d",
				item.Achievement.Slug, want, want, item.CurrentValue, item.TargetValue)
		}
		delete(targets, item.Achievement.Slug)
	}
	if len(targets) != 0 {
		t.Fatalf("unlocked achievements missing from listing: %v", targets)
	}
}

func TestListFiltersByCategory(t *testing.T) {
	service, store := newAchievementFixture(t)
	store.SeedStats("user-1", stats.Snapshot{})

	items, err := service.List(context.Background(), "user-1", ListAchievementsOptions{Category: "learning"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected the 2 learning achievements, got %d", len(items))
	}
	for _, item := range items {
		if item.Achievement.Category != "learning" {
			t.Fatalf("category filter leaked %s", item.Achievement.Slug)
		}
	}
}
