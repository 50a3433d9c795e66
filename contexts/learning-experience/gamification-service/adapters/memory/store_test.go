package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

func TestApplyXPAwardOutcome(t *testing.T) {
	store := NewStore()
	store.SeedUser("user-1")
	ctx := context.Background()

	outcome, err := store.ApplyXPAward(ctx, ports.XPTransaction{
		TransactionID: "tx-1",
		UserID:        "user-1",
		Amount:        300,
		Source:        ports.SourceLessonComplete,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if outcome.PreviousTotal != 0 || outcome.NewTotal != 300 {
		t.Fatalf("unexpected totals: %+v", outcome)
	}
	if outcome.PreviousLevel != 1 || outcome.NewLevel != 2 {
		t.Fatalf("300 xp must reach level 2: %+v", outcome)
	}

	outcome, err = store.ApplyXPAward(ctx, ports.XPTransaction{
		TransactionID: "tx-2",
		UserID:        "user-1",
		Amount:        -1000,
		Source:        ports.SourceAdjustment,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("adjustment failed: %v", err)
	}
	if outcome.NewTotal != 0 || outcome.NewLevel != 1 {
		t.Fatalf("negative total must clamp to zero: %+v", outcome)
	}

	if _, err := store.ApplyXPAward(ctx, ports.XPTransaction{
		TransactionID: "tx-3",
		UserID:        "ghost",
		Amount:        10,
		Source:        ports.SourceLessonComplete,
	}); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestListLeaderboardOrderingAndPaging(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.SeedUserState(ports.UserGamificationState{UserID: "user-a", XPTotal: 500, Level: 2})
	store.SeedUserState(ports.UserGamificationState{UserID: "user-b", XPTotal: 900, Level: 3})
	store.SeedUserState(ports.UserGamificationState{UserID: "user-c", XPTotal: 500, Level: 2})
	store.SeedUserState(ports.UserGamificationState{UserID: "user-d", XPTotal: 100, Level: 1})

	entries, err := store.ListLeaderboard(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].UserID != "user-b" || entries[0].Rank != 1 {
		t.Fatalf("highest total must rank first: %+v", entries[0])
	}
	// Equal totals break ties by user id for a stable ordering.
	if entries[1].UserID != "user-a" || entries[2].UserID != "user-c" {
		t.Fatalf("tie break out of order: %+v", entries[1:3])
	}

	page, err := store.ListLeaderboard(ctx, 2, 2)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "user-c" || page[0].Rank != 3 {
		t.Fatalf("offset paging broken: %+v", page)
	}

	empty, err := store.ListLeaderboard(ctx, 10, 50)
	if err != nil {
		t.Fatalf("overshoot failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("offset past the end must be empty, got %d", len(empty))
	}
}

func TestUpsertsReportCreated(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := store.UnlockAchievement(ctx, ports.AchievementUnlock{
		UserID:        "user-1",
		AchievementID: "ach-1",
		UnlockedAt:    now,
	})
	if err != nil || !created {
		t.Fatalf("first unlock expected created, got (%v, %v)", created, err)
	}
	created, err = store.UnlockAchievement(ctx, ports.AchievementUnlock{
		UserID:        "user-1",
		AchievementID: "ach-1",
		UnlockedAt:    now,
	})
	if err != nil || created {
		t.Fatalf("second unlock expected not created, got (%v, %v)", created, err)
	}

	created, err = store.AwardBadge(ctx, ports.UserBadge{UserID: "user-1", BadgeID: "badge-1", EarnedAt: now})
	if err != nil || !created {
		t.Fatalf("first award expected created, got (%v, %v)", created, err)
	}
	created, err = store.AwardBadge(ctx, ports.UserBadge{UserID: "user-1", BadgeID: "badge-1", EarnedAt: now})
	if err != nil || created {
		t.Fatalf("second award expected not created, got (%v, %v)", created, err)
	}
}

func TestUpdateBadgeDisplayRequiresOwnership(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.UpdateBadgeDisplay(ctx, "user-1", "badge-1", true, 1)
	if !errors.Is(err, domainerrors.ErrBadgeNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}

	if _, err := store.AwardBadge(ctx, ports.UserBadge{UserID: "user-1", BadgeID: "badge-1", EarnedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if err := store.UpdateBadgeDisplay(ctx, "user-1", "badge-1", true, 1); err != nil {
		t.Fatalf("display failed: %v", err)
	}
	badges, err := store.ListUserBadges(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(badges) != 1 || !badges[0].IsDisplayed || badges[0].DisplayOrder != 1 {
		t.Fatalf("display flags not persisted: %+v", badges)
	}
}

func TestGetLatestStreakDay(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, has, err := store.GetLatestStreakDay(ctx, "user-1")
	if err != nil || has {
		t.Fatalf("no history expected, got (%v, %v)", has, err)
	}

	store.SeedStreakDay("user-1", "2026-02-27")
	store.SeedStreakDay("user-1", "2026-03-01")
	store.SeedStreakDay("user-1", "2026-02-28")

	day, has, err := store.GetLatestStreakDay(ctx, "user-1")
	if err != nil || !has {
		t.Fatalf("history expected, got (%v, %v)", has, err)
	}
	if day != "2026-03-01" {
		t.Fatalf("latest day expected 2026-03-01, got %s", day)
	}
}

func TestApplyStreakUpdateReportsExistingDay(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.SeedUserState(ports.UserGamificationState{
		UserID:        "user-1",
		Level:         1,
		StreakCurrent: 3,
		StreakLongest: 3,
	})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	state, created, err := store.ApplyStreakUpdate(ctx, "user-1", ports.StreakUpdate{
		DayKey:       "2026-03-01",
		Current:      4,
		Longest:      4,
		LastActiveAt: now,
	})
	if err != nil || !created {
		t.Fatalf("first update expected created, got (%v, %v)", created, err)
	}
	if state.StreakCurrent != 4 {
		t.Fatalf("counters not applied: %+v", state)
	}

	state, created, err = store.ApplyStreakUpdate(ctx, "user-1", ports.StreakUpdate{
		DayKey:       "2026-03-01",
		Current:      5,
		Longest:      5,
		LastActiveAt: now.Add(time.Minute),
	})
	if err != nil || created {
		t.Fatalf("second update expected not created, got (%v, %v)", created, err)
	}
	if state.StreakCurrent != 4 || state.StreakLongest != 4 {
		t.Fatalf("losing update must leave counters alone: %+v", state)
	}
}

func TestClaimDailyBonusDayIsConditional(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.SeedUser("user-1")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	won, err := store.ClaimDailyBonusDay(ctx, "user-1", now)
	if err != nil || !won {
		t.Fatalf("first claim expected to win, got (%v, %v)", won, err)
	}
	won, err = store.ClaimDailyBonusDay(ctx, "user-1", now.Add(2*time.Hour))
	if err != nil || won {
		t.Fatalf("same-day claim must lose, got (%v, %v)", won, err)
	}
	won, err = store.ClaimDailyBonusDay(ctx, "user-1", now.Add(24*time.Hour))
	if err != nil || !won {
		t.Fatalf("next-day claim expected to win, got (%v, %v)", won, err)
	}

	if _, err := store.ClaimDailyBonusDay(ctx, "ghost", now); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestUserStatsMergesLiveState(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.SeedUserState(ports.UserGamificationState{
		UserID:        "user-1",
		XPTotal:       1200,
		Level:         4,
		StreakCurrent: 6,
		StreakLongest: 12,
	})
	store.SeedStats("user-1", stats.Snapshot{
		LessonsCompleted: 40,
		CommentsPosted:   3,
	})

	snapshot, err := store.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if snapshot.LessonsCompleted != 40 || snapshot.CommentsPosted != 3 {
		t.Fatalf("seeded aggregates lost: %+v", snapshot)
	}
	if snapshot.XPTotal != 1200 || snapshot.Level != 4 {
		t.Fatalf("live xp state must override the seed: %+v", snapshot)
	}
	if snapshot.StreakCurrent != 6 || snapshot.StreakLongest != 12 {
		t.Fatalf("live streak state must override the seed: %+v", snapshot)
	}
}
