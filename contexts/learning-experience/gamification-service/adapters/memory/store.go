package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/leveling"
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/contexts/learning-experience/gamification-service/domain/streakcal"
	"aralify/contexts/learning-experience/gamification-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runtime. The
// single mutex stands in for the database's transaction boundary: every
// multi-record mutation happens under one critical section.
type Store struct {
	mu sync.RWMutex

	users        map[string]ports.UserGamificationState
	transactions []ports.XPTransaction
	streakDays   map[string]map[string]ports.StreakHistoryEntry
	achievements []ports.Achievement
	unlocks      map[string]map[string]ports.AchievementUnlock
	badges       []ports.Badge
	userBadges   map[string]map[string]ports.UserBadge
	activities   []ports.Activity
	statsByUser  map[string]stats.Snapshot
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]ports.UserGamificationState),
		transactions: make([]ports.XPTransaction, 0),
		streakDays:   make(map[string]map[string]ports.StreakHistoryEntry),
		unlocks:      make(map[string]map[string]ports.AchievementUnlock),
		userBadges:   make(map[string]map[string]ports.UserBadge),
		activities:   make([]ports.Activity, 0),
		statsByUser:  make(map[string]stats.Snapshot),
	}
}

// SeedUser creates a zeroed gamification state row, mirroring what user
// account creation does in the platform.
func (s *Store) SeedUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = strings.TrimSpace(userID)
	s.users[userID] = ports.UserGamificationState{
		UserID: userID,
		Level:  1,
	}
}

func (s *Store) SeedUserState(state ports.UserGamificationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(state.UserID)] = state
}

func (s *Store) SeedAchievements(items []ports.Achievement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.achievements = append([]ports.Achievement(nil), items...)
}

func (s *Store) SeedBadges(items []ports.Badge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges = append([]ports.Badge(nil), items...)
}

func (s *Store) SeedStats(userID string, snapshot stats.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.UserID = strings.TrimSpace(userID)
	s.statsByUser[snapshot.UserID] = snapshot
}

// SeedStreakDay backfills a credited history day, for scenarios that
// start mid-streak.
func (s *Store) SeedStreakDay(userID string, dayKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = strings.TrimSpace(userID)
	if _, ok := s.streakDays[userID]; !ok {
		s.streakDays[userID] = make(map[string]ports.StreakHistoryEntry)
	}
	s.streakDays[userID][dayKey] = ports.StreakHistoryEntry{
		UserID:    userID,
		DayKey:    dayKey,
		Completed: true,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Store) GetUserState(_ context.Context, userID string) (ports.UserGamificationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return ports.UserGamificationState{}, domainerrors.ErrUserNotFound
	}
	return state, nil
}

func (s *Store) ApplyXPAward(_ context.Context, award ports.XPTransaction) (ports.XPAwardOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := strings.TrimSpace(award.UserID)
	state, ok := s.users[userID]
	if !ok {
		return ports.XPAwardOutcome{}, domainerrors.ErrUserNotFound
	}

	outcome := ports.XPAwardOutcome{
		PreviousTotal: state.XPTotal,
		PreviousLevel: state.Level,
	}
	newTotal := state.XPTotal + award.Amount
	if newTotal < 0 {
		newTotal = 0
	}
	outcome.NewTotal = newTotal
	outcome.NewLevel = leveling.LevelFromXP(newTotal)

	s.transactions = append(s.transactions, award)
	state.XPTotal = newTotal
	state.Level = outcome.NewLevel
	state.UpdatedAt = award.CreatedAt
	s.users[userID] = state
	return outcome, nil
}

func (s *Store) ListXPTransactions(_ context.Context, userID string, limit int) ([]ports.XPTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID = strings.TrimSpace(userID)
	items := make([]ports.XPTransaction, 0)
	for _, transaction := range s.transactions {
		if transaction.UserID == userID {
			items = append(items, transaction)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListLeaderboard(_ context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items := make([]ports.LeaderboardEntry, 0, len(s.users))
	for _, state := range s.users {
		items = append(items, ports.LeaderboardEntry{
			UserID:  state.UserID,
			XPTotal: state.XPTotal,
			Level:   state.Level,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].XPTotal == items[j].XPTotal {
			return items[i].UserID < items[j].UserID
		}
		return items[i].XPTotal > items[j].XPTotal
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	if offset >= len(items) {
		return []ports.LeaderboardEntry{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]ports.LeaderboardEntry(nil), items[offset:end]...), nil
}

func (s *Store) GetLatestStreakDay(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := s.streakDays[strings.TrimSpace(userID)]
	if len(days) == 0 {
		return "", false, nil
	}
	latest := ""
	for dayKey := range days {
		if dayKey > latest {
			latest = dayKey
		}
	}
	return latest, true, nil
}

func (s *Store) ApplyStreakUpdate(_ context.Context, userID string, update ports.StreakUpdate) (ports.UserGamificationState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID = strings.TrimSpace(userID)
	state, ok := s.users[userID]
	if !ok {
		return ports.UserGamificationState{}, false, domainerrors.ErrUserNotFound
	}

	if _, ok := s.streakDays[userID]; !ok {
		s.streakDays[userID] = make(map[string]ports.StreakHistoryEntry)
	}
	if _, exists := s.streakDays[userID][update.DayKey]; exists {
		// Another request already credited the day; observe its state.
		return state, false, nil
	}
	s.streakDays[userID][update.DayKey] = ports.StreakHistoryEntry{
		UserID:    userID,
		DayKey:    update.DayKey,
		Completed: true,
		CreatedAt: update.LastActiveAt,
	}

	lastActive := update.LastActiveAt
	state.StreakCurrent = update.Current
	state.StreakLongest = update.Longest
	state.StreakFreezesAvailable = update.FreezesAvailable
	state.LastActiveAt = &lastActive
	state.UpdatedAt = update.LastActiveAt
	s.users[userID] = state
	return state, true, nil
}

func (s *Store) ClaimDailyBonusDay(_ context.Context, userID string, claimedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID = strings.TrimSpace(userID)
	state, ok := s.users[userID]
	if !ok {
		return false, domainerrors.ErrUserNotFound
	}
	claimed := claimedAt.UTC()
	if state.LastDailyClaimAt != nil && streakcal.DayKey(*state.LastDailyClaimAt) == streakcal.DayKey(claimed) {
		return false, nil
	}
	state.LastDailyClaimAt = &claimed
	state.UpdatedAt = claimed
	s.users[userID] = state
	return true, nil
}

func (s *Store) ListAchievements(_ context.Context) ([]ports.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.Achievement(nil), s.achievements...), nil
}

func (s *Store) ListUnlocked(_ context.Context, userID string) ([]ports.AchievementUnlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unlocks := s.unlocks[strings.TrimSpace(userID)]
	items := make([]ports.AchievementUnlock, 0, len(unlocks))
	for _, unlock := range unlocks {
		items = append(items, unlock)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UnlockedAt.Before(items[j].UnlockedAt)
	})
	return items, nil
}

func (s *Store) UnlockAchievement(_ context.Context, unlock ports.AchievementUnlock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := strings.TrimSpace(unlock.UserID)
	achievementID := strings.TrimSpace(unlock.AchievementID)
	if userID == "" || achievementID == "" {
		return false, domainerrors.ErrInvalidInput
	}
	if _, ok := s.unlocks[userID]; !ok {
		s.unlocks[userID] = make(map[string]ports.AchievementUnlock)
	}
	if _, exists := s.unlocks[userID][achievementID]; exists {
		return false, nil
	}
	s.unlocks[userID][achievementID] = unlock
	return true, nil
}

func (s *Store) ListBadges(_ context.Context) ([]ports.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.Badge(nil), s.badges...), nil
}

func (s *Store) ListUserBadges(_ context.Context, userID string) ([]ports.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.userBadges[strings.TrimSpace(userID)]
	items := make([]ports.UserBadge, 0, len(owned))
	for _, userBadge := range owned {
		items = append(items, userBadge)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EarnedAt.Before(items[j].EarnedAt)
	})
	return items, nil
}

func (s *Store) AwardBadge(_ context.Context, award ports.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := strings.TrimSpace(award.UserID)
	badgeID := strings.TrimSpace(award.BadgeID)
	if userID == "" || badgeID == "" {
		return false, domainerrors.ErrInvalidInput
	}
	if _, ok := s.userBadges[userID]; !ok {
		s.userBadges[userID] = make(map[string]ports.UserBadge)
	}
	if _, exists := s.userBadges[userID][badgeID]; exists {
		return false, nil
	}
	s.userBadges[userID][badgeID] = award
	return true, nil
}

func (s *Store) UpdateBadgeDisplay(_ context.Context, userID string, badgeID string, displayed bool, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.userBadges[strings.TrimSpace(userID)]
	if !ok {
		return domainerrors.ErrBadgeNotOwned
	}
	userBadge, ok := owned[strings.TrimSpace(badgeID)]
	if !ok {
		return domainerrors.ErrBadgeNotOwned
	}
	userBadge.IsDisplayed = displayed
	userBadge.DisplayOrder = order
	owned[strings.TrimSpace(badgeID)] = userBadge
	return nil
}

func (s *Store) AppendActivity(_ context.Context, activity ports.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, activity)
	return nil
}

// Activities returns a copy of the feed, newest last. Test helper.
func (s *Store) Activities() []ports.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.Activity(nil), s.activities...)
}

// Transactions returns a copy of the XP audit log. Test helper.
func (s *Store) Transactions() []ports.XPTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.XPTransaction(nil), s.transactions...)
}

// UserStats merges seeded counters with the live gamification state so
// level, XP, and streak criteria always see current values.
func (s *Store) UserStats(_ context.Context, userID string) (stats.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID = strings.TrimSpace(userID)
	snapshot := s.statsByUser[userID]
	snapshot.UserID = userID
	if state, ok := s.users[userID]; ok {
		snapshot.XPTotal = state.XPTotal
		snapshot.Level = state.Level
		snapshot.StreakCurrent = state.StreakCurrent
		snapshot.StreakLongest = state.StreakLongest
	}
	return snapshot, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.UserStateRepository = (*Store)(nil)
var _ ports.StreakRepository = (*Store)(nil)
var _ ports.AchievementRepository = (*Store)(nil)
var _ ports.BadgeRepository = (*Store)(nil)
var _ ports.ActivityLog = (*Store)(nil)
var _ ports.StatsSource = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
