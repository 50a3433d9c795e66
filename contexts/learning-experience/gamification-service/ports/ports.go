package ports

import (
	"context"
	"time"

	"aralify/contexts/learning-experience/gamification-service/domain/criteria"
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/internal/shared/events"
)

// XPSource tags the origin of an XP transaction.
type XPSource string

const (
	SourceLessonComplete    XPSource = "LESSON_COMPLETE"
	SourceQuizComplete      XPSource = "QUIZ_COMPLETE"
	SourceChallengeComplete XPSource = "CHALLENGE_COMPLETE"
	SourceDailyBonus        XPSource = "DAILY_BONUS"
	SourceStreakBonus       XPSource = "STREAK_BONUS"
	SourceAchievement       XPSource = "ACHIEVEMENT"
	SourceAdjustment        XPSource = "ADJUSTMENT"
)

// UserGamificationState is the per-user row the engines mutate.
type UserGamificationState struct {
	UserID                 string
	XPTotal                int
	Level                  int
	StreakCurrent          int
	StreakLongest          int
	StreakFreezesAvailable int
	LastDailyClaimAt       *time.Time
	LastActiveAt           *time.Time
	UpdatedAt              time.Time
}

// XPTransaction is one append-only audit row.
type XPTransaction struct {
	TransactionID string
	UserID        string
	Amount        int
	Source        XPSource
	SourceID      string
	Description   string
	CreatedAt     time.Time
}

// XPAwardOutcome is what the store reports after an atomic award.
type XPAwardOutcome struct {
	PreviousTotal int
	PreviousLevel int
	NewTotal      int
	NewLevel      int
}

// StreakUpdate carries the streak fields persisted atomically together
// with the day's history upsert.
type StreakUpdate struct {
	DayKey           string
	Current          int
	Longest          int
	FreezesAvailable int
	LastActiveAt     time.Time
}

type StreakHistoryEntry struct {
	UserID    string
	DayKey    string
	Completed bool
	CreatedAt time.Time
}

type Achievement struct {
	AchievementID string
	Slug          string
	Title         string
	Description   string
	Category      string
	XPReward      int
	IsSecret      bool
	Criteria      criteria.Criteria
}

type AchievementUnlock struct {
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

type Badge struct {
	BadgeID     string
	Slug        string
	Title       string
	Description string
	Rarity      BadgeRarity
	IconURL     string
}

type UserBadge struct {
	UserID       string
	BadgeID      string
	EarnedAt     time.Time
	IsDisplayed  bool
	DisplayOrder int
}

// Activity is an append-only feed entry. The engines only ever write it.
type Activity struct {
	ActivityID string
	UserID     string
	Type       string
	Data       map[string]any
	CreatedAt  time.Time
}

type LeaderboardEntry struct {
	UserID  string
	XPTotal int
	Level   int
	Rank    int
}

// UserStateRepository owns the gamification state row and its XP audit log.
// ApplyXPAward must append the transaction and update the user row in one
// atomic step, clamping the new total at zero.
type UserStateRepository interface {
	GetUserState(ctx context.Context, userID string) (UserGamificationState, error)
	ApplyXPAward(ctx context.Context, award XPTransaction) (XPAwardOutcome, error)
	ListXPTransactions(ctx context.Context, userID string, limit int) ([]XPTransaction, error)
	ListLeaderboard(ctx context.Context, limit int, offset int) ([]LeaderboardEntry, error)
}

// StreakRepository persists streak state plus the per-day history log.
// ApplyStreakUpdate upserts the day's history row and the user's streak
// fields atomically; it reports false when the day row already existed,
// in which case the counters are left untouched and the current state is
// returned. ClaimDailyBonusDay marks the claim for claimedAt's UTC day
// and reports false when that day was already claimed; losers of a
// concurrent claim observe the existing mark.
type StreakRepository interface {
	GetLatestStreakDay(ctx context.Context, userID string) (string, bool, error)
	ApplyStreakUpdate(ctx context.Context, userID string, update StreakUpdate) (UserGamificationState, bool, error)
	ClaimDailyBonusDay(ctx context.Context, userID string, claimedAt time.Time) (bool, error)
}

// AchievementRepository reads the catalog and records unlocks.
// UnlockAchievement reports false when the pair already existed, which is
// the guard against double-paying the reward.
type AchievementRepository interface {
	ListAchievements(ctx context.Context) ([]Achievement, error)
	ListUnlocked(ctx context.Context, userID string) ([]AchievementUnlock, error)
	UnlockAchievement(ctx context.Context, unlock AchievementUnlock) (bool, error)
}

// BadgeRepository reads the badge catalog and records user awards.
// AwardBadge reports false when the user already owned the badge.
type BadgeRepository interface {
	ListBadges(ctx context.Context) ([]Badge, error)
	ListUserBadges(ctx context.Context, userID string) ([]UserBadge, error)
	AwardBadge(ctx context.Context, award UserBadge) (bool, error)
	UpdateBadgeDisplay(ctx context.Context, userID string, badgeID string, displayed bool, order int) error
}

// ActivityLog is the append-only feed sink. Writes are best-effort from the
// engines' point of view.
type ActivityLog interface {
	AppendActivity(ctx context.Context, activity Activity) error
}

// StatsSource serves the aggregate snapshot criteria and badge rules read.
type StatsSource interface {
	UserStats(ctx context.Context, userID string) (stats.Snapshot, error)
}

// LeaderboardCache is an optional read-through cache over ListLeaderboard.
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, userID string, xpTotal int, level int) error
	TopEntries(ctx context.Context, limit int, offset int) ([]LeaderboardEntry, bool, error)
	Rebuild(ctx context.Context, entries []LeaderboardEntry) error
}

// EventPublisher fans out post-commit gamification events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, events.Envelope) error,
	) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
