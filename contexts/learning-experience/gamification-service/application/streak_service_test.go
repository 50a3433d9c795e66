package application

import (
	"context"
	"testing"
	"time"

	"aralify/contexts/learning-experience/gamification-service/adapters/memory"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

func newStreakFixture(t *testing.T) (StreakService, *memory.Store, *fakeClock) {
	t.Helper()
	store := memory.NewStore()
	store.SeedUser("user-1")
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	xp := XPService{
		Users:      store,
		Activities: store,
		Clock:      clock,
		IDGen:      store,
	}
	service := StreakService{
		Users:      store,
		Streaks:    store,
		Activities: store,
		XP:         xp,
		Clock:      clock,
	}
	return service, store, clock
}

func TestUpdateStreakFirstActivity(t *testing.T) {
	service, _, _ := newStreakFixture(t)

	result, err := service.UpdateStreak(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !result.StreakUpdated || result.NewStreak != 1 {
		t.Fatalf("first activity must start a 1-day streak: %+v", result)
	}
}

func TestUpdateStreakSameDayIsNoOp(t *testing.T) {
	service, _, clock := newStreakFixture(t)
	ctx := context.Background()

	if _, err := service.UpdateStreak(ctx, "user-1"); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	clock.Advance(3 * time.Hour)
	result, err := service.UpdateStreak(ctx, "user-1")
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if result.StreakUpdated || result.NewStreak != 1 {
		t.Fatalf("same-day update must be a no-op: %+v", result)
	}
}

func TestUpdateStreakConsecutiveDaysIncrement(t *testing.T) {
	service, _, clock := newStreakFixture(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		result, err := service.UpdateStreak(ctx, "user-1")
		if err != nil {
			t.Fatalf("day %d update failed: %v", day, err)
		}
		if result.NewStreak != day {
			t.Fatalf("day %d expected streak %d, got %d", day, day, result.NewStreak)
		}
		clock.Advance(24 * time.Hour)
	}
}

func TestUpdateStreakDaySevenPaysMilestoneAndEarnsFreeze(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	var last UpdateStreakResult
	for day := 1; day <= 7; day++ {
		result, err := service.UpdateStreak(ctx, "user-1")
		if err != nil {
			t.Fatalf("day %d update failed: %v", day, err)
		}
		last = result
		clock.Advance(24 * time.Hour)
	}

	if last.MilestoneReached != 7 || last.MilestoneBonusXP != 50 {
		t.Fatalf("day 7 milestone missing: %+v", last)
	}
	if !last.FreezeEarned || last.FreezesAvailable != 1 {
		t.Fatalf("day 7 must earn a freeze: %+v", last)
	}

	paid := false
	for _, transaction := range store.Transactions() {
		if transaction.Source == ports.SourceStreakBonus && transaction.Amount == 50 {
			paid = true
		}
	}
	if !paid {
		t.Fatalf("milestone bonus transaction not recorded")
	}

	// Day 3 milestone was also crossed on the way.
	threeDay := false
	for _, transaction := range store.Transactions() {
		if transaction.Source == ports.SourceStreakBonus && transaction.Amount == 25 {
			threeDay = true
		}
	}
	if !threeDay {
		t.Fatalf("3-day milestone bonus not recorded")
	}
}

func TestUpdateStreakFreezeBridgesOneMissedDay(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	store.SeedUserState(ports.UserGamificationState{
		UserID:                 "user-1",
		Level:                  1,
		StreakCurrent:          4,
		StreakLongest:          4,
		StreakFreezesAvailable: 1,
	})
	store.SeedStreakDay("user-1", "2026-02-27")
	clock.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	result, err := service.UpdateStreak(ctx, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !result.FreezeConsumed {
		t.Fatalf("expected a freeze to be consumed: %+v", result)
	}
	if result.NewStreak != 5 {
		t.Fatalf("freeze must bridge the gap, expected streak 5, got %d", result.NewStreak)
	}
	if result.FreezesAvailable != 0 {
		t.Fatalf("freeze count must drop to 0, got %d", result.FreezesAvailable)
	}
}

func TestUpdateStreakBreaksWithoutFreeze(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	store.SeedUserState(ports.UserGamificationState{
		UserID:        "user-1",
		Level:         1,
		StreakCurrent: 10,
		StreakLongest: 10,
	})
	store.SeedStreakDay("user-1", "2026-02-20")
	clock.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	result, err := service.UpdateStreak(ctx, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.NewStreak != 1 {
		t.Fatalf("broken streak must reset to 1, got %d", result.NewStreak)
	}
	if result.LongestStreak != 10 {
		t.Fatalf("longest streak must survive the break, got %d", result.LongestStreak)
	}
}

func TestClaimDailyBonusOncePerDay(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	first, err := service.ClaimDailyBonus(ctx, "user-1")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !first.Success || first.AlreadyClaimed {
		t.Fatalf("first claim must succeed: %+v", first)
	}
	if first.XPEarned != 10 {
		t.Fatalf("base daily bonus expected 10 xp, got %d", first.XPEarned)
	}

	clock.Advance(2 * time.Hour)
	second, err := service.ClaimDailyBonus(ctx, "user-1")
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if second.Success || !second.AlreadyClaimed {
		t.Fatalf("same-day second claim must be rejected: %+v", second)
	}

	state, err := store.GetUserState(ctx, "user-1")
	if err != nil {
		t.Fatalf("state read failed: %v", err)
	}
	if state.XPTotal != 10 {
		t.Fatalf("bonus must be paid exactly once, total %d", state.XPTotal)
	}
}

// staleStreakDays wraps the store but keeps reporting a fixed latest
// day, reproducing a read that raced a concurrent same-day write.
type staleStreakDays struct {
	*memory.Store
	lastDay string
}

func (r staleStreakDays) GetLatestStreakDay(context.Context, string) (string, bool, error) {
	return r.lastDay, true, nil
}

// staleUserState wraps the store but serves a frozen state row, the way
// a second device sees the world before the first device's claim lands.
type staleUserState struct {
	*memory.Store
	state ports.UserGamificationState
}

func (r staleUserState) GetUserState(context.Context, string) (ports.UserGamificationState, error) {
	return r.state, nil
}

func TestUpdateStreakConcurrentLoserObservesExistingDay(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	store.SeedUserState(ports.UserGamificationState{
		UserID:        "user-1",
		Level:         1,
		StreakCurrent: 6,
		StreakLongest: 6,
	})
	store.SeedStreakDay("user-1", "2026-02-28")
	clock.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service.Streaks = staleStreakDays{Store: store, lastDay: "2026-02-28"}

	first, err := service.UpdateStreak(ctx, "user-1")
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if first.NewStreak != 7 || first.MilestoneReached != 7 {
		t.Fatalf("winner must reach the day-7 milestone: %+v", first)
	}

	// The second request classified the same yesterday->today gap before
	// the winner's day row landed; it must lose the write and pay nothing.
	second, err := service.UpdateStreak(ctx, "user-1")
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if second.StreakUpdated {
		t.Fatalf("losing update must be a no-op: %+v", second)
	}
	if second.NewStreak != 7 || second.MilestoneReached != 0 || second.FreezeEarned {
		t.Fatalf("loser must observe the winner's state: %+v", second)
	}

	bonuses := 0
	for _, transaction := range store.Transactions() {
		if transaction.Source == ports.SourceStreakBonus {
			bonuses++
		}
	}
	if bonuses != 1 {
		t.Fatalf("expected exactly one streak bonus transaction, got %d", bonuses)
	}

	state, err := store.GetUserState(ctx, "user-1")
	if err != nil {
		t.Fatalf("state read failed: %v", err)
	}
	if state.StreakCurrent != 7 || state.StreakFreezesAvailable != 1 {
		t.Fatalf("loser must not touch the counters: %+v", state)
	}
}

func TestClaimDailyBonusConcurrentClaimPaysOnce(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	first, err := service.ClaimDailyBonus(ctx, "user-1")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !first.Success {
		t.Fatalf("first claim must succeed: %+v", first)
	}

	// A second device read the state before the first claim committed, so
	// its last-claim check passes; the conditional claim write must still
	// reject it.
	stale := staleUserState{Store: store, state: ports.UserGamificationState{
		UserID:        "user-1",
		Level:         1,
		StreakCurrent: 1,
	}}
	raced := StreakService{
		Users:      stale,
		Streaks:    store,
		Activities: store,
		XP:         service.XP,
		Clock:      clock,
	}
	second, err := raced.ClaimDailyBonus(ctx, "user-1")
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if second.Success || !second.AlreadyClaimed {
		t.Fatalf("racing claim must be rejected: %+v", second)
	}

	bonuses := 0
	for _, transaction := range store.Transactions() {
		if transaction.Source == ports.SourceDailyBonus {
			bonuses++
		}
	}
	if bonuses != 1 {
		t.Fatalf("expected exactly one daily bonus transaction, got %d", bonuses)
	}
}

func TestStreakInfoAtRisk(t *testing.T) {
	service, store, clock := newStreakFixture(t)
	ctx := context.Background()

	store.SeedUserState(ports.UserGamificationState{
		UserID:        "user-1",
		Level:         1,
		StreakCurrent: 5,
		StreakLongest: 8,
	})
	store.SeedStreakDay("user-1", "2026-02-28")
	clock.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	info, err := service.StreakInfo(ctx, "user-1")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !info.IsStreakActive || !info.StreakAtRisk {
		t.Fatalf("yesterday's activity must be active and at risk: %+v", info)
	}
	if info.NextMilestone != 7 || info.DaysRemaining != 2 {
		t.Fatalf("unexpected milestone projection: %+v", info)
	}
	if !info.CanClaimBonus {
		t.Fatalf("no claim today means the bonus is claimable")
	}
}
