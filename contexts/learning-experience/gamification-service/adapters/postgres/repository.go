package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"aralify/contexts/learning-experience/gamification-service/domain/criteria"
	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/leveling"
	"aralify/contexts/learning-experience/gamification-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetUserState(ctx context.Context, userID string) (ports.UserGamificationState, error) {
	var row userStateModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserGamificationState{}, domainerrors.ErrUserNotFound
		}
		return ports.UserGamificationState{}, r.logError("gamification_repo_get_user_state_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toState(), nil
}

// ApplyXPAward inserts the transaction row and updates the user state in
// one database transaction. The user row is locked FOR UPDATE so two
// concurrent awards serialize on the total.
func (r *Repository) ApplyXPAward(ctx context.Context, award ports.XPTransaction) (ports.XPAwardOutcome, error) {
	var outcome ports.XPAwardOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userStateModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", strings.TrimSpace(award.UserID)).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}

		outcome.PreviousTotal = row.XPTotal
		outcome.PreviousLevel = row.Level
		newTotal := row.XPTotal + award.Amount
		if newTotal < 0 {
			newTotal = 0
		}
		outcome.NewTotal = newTotal
		outcome.NewLevel = leveling.LevelFromXP(newTotal)

		transactionRow := xpTransactionModel{
			ID:          strings.TrimSpace(award.TransactionID),
			UserID:      strings.TrimSpace(award.UserID),
			Amount:      award.Amount,
			Source:      string(award.Source),
			SourceID:    strings.TrimSpace(award.SourceID),
			Description: strings.TrimSpace(award.Description),
			CreatedAt:   award.CreatedAt.UTC(),
		}
		if err := tx.Create(&transactionRow).Error; err != nil {
			return err
		}

		return tx.Model(&userStateModel{}).
			Where("user_id = ?", row.UserID).
			Updates(map[string]any{
				"xp_total":   newTotal,
				"level":      outcome.NewLevel,
				"updated_at": award.CreatedAt.UTC(),
			}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return ports.XPAwardOutcome{}, err
		}
		if isUniqueViolation(err) {
			return ports.XPAwardOutcome{}, domainerrors.ErrInvariantViolation
		}
		return ports.XPAwardOutcome{}, r.logError("gamification_repo_apply_xp_award_failed", err,
			"user_id", strings.TrimSpace(award.UserID),
			"source", string(award.Source),
		)
	}
	return outcome, nil
}

func (r *Repository) ListXPTransactions(ctx context.Context, userID string, limit int) ([]ports.XPTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []xpTransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_xp_transactions_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	items := make([]ports.XPTransaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toTransaction())
	}
	return items, nil
}

func (r *Repository) ListLeaderboard(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []userStateModel
	if err := r.db.WithContext(ctx).
		Order("xp_total DESC, user_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_leaderboard_failed", err, "limit", limit, "offset", offset)
	}
	items := make([]ports.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		items = append(items, ports.LeaderboardEntry{
			UserID:  row.UserID,
			XPTotal: row.XPTotal,
			Level:   row.Level,
			Rank:    offset + i + 1,
		})
	}
	return items, nil
}

func (r *Repository) GetLatestStreakDay(ctx context.Context, userID string) (string, bool, error) {
	var row streakDayModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("day_key DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, r.logError("gamification_repo_get_latest_streak_day_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.DayKey, true, nil
}

// ApplyStreakUpdate couples the history-day upsert with the state-row
// update so a credited day and its counters never diverge. When the day
// row already exists (another request credited the day first) the state
// row is left alone and the loser gets the winner's state back.
func (r *Repository) ApplyStreakUpdate(ctx context.Context, userID string, update ports.StreakUpdate) (ports.UserGamificationState, bool, error) {
	userID = strings.TrimSpace(userID)
	var state ports.UserGamificationState
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userStateModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}

		dayRow := streakDayModel{
			UserID:    userID,
			DayKey:    update.DayKey,
			Completed: true,
			CreatedAt: update.LastActiveAt.UTC(),
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day_key"}},
			DoNothing: true,
		}).Create(&dayRow)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			state = row.toState()
			return nil
		}
		created = true

		lastActive := update.LastActiveAt.UTC()
		if err := tx.Model(&userStateModel{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"streak_current":           update.Current,
				"streak_longest":           update.Longest,
				"streak_freezes_available": update.FreezesAvailable,
				"last_active_at":           lastActive,
				"updated_at":               lastActive,
			}).Error; err != nil {
			return err
		}

		row.StreakCurrent = update.Current
		row.StreakLongest = update.Longest
		row.StreakFreezesAvailable = update.FreezesAvailable
		row.LastActiveAt = &lastActive
		row.UpdatedAt = lastActive
		state = row.toState()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return ports.UserGamificationState{}, false, err
		}
		return ports.UserGamificationState{}, false, r.logError("gamification_repo_apply_streak_update_failed", err,
			"user_id", userID,
			"day_key", update.DayKey,
		)
	}
	return state, created, nil
}

// ClaimDailyBonusDay is a conditional update on the claim timestamp:
// only the request that moves it into claimedAt's UTC day wins.
func (r *Repository) ClaimDailyBonusDay(ctx context.Context, userID string, claimedAt time.Time) (bool, error) {
	claimed := claimedAt.UTC()
	dayStart := time.Date(claimed.Year(), claimed.Month(), claimed.Day(), 0, 0, 0, 0, time.UTC)
	result := r.db.WithContext(ctx).
		Model(&userStateModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("last_daily_claim_at IS NULL OR last_daily_claim_at < ?", dayStart).
		Updates(map[string]any{
			"last_daily_claim_at": claimed,
			"updated_at":          claimed,
		})
	if result.Error != nil {
		return false, r.logError("gamification_repo_claim_daily_bonus_day_failed", result.Error,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListAchievements(ctx context.Context) ([]ports.Achievement, error) {
	var rows []achievementModel
	if err := r.db.WithContext(ctx).
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_achievements_failed", err)
	}
	items := make([]ports.Achievement, 0, len(rows))
	for _, row := range rows {
		achievement, err := row.toAchievement()
		if err != nil {
			return nil, r.logError("gamification_repo_decode_achievement_failed", err,
				"achievement_id", row.ID,
			)
		}
		items = append(items, achievement)
	}
	return items, nil
}

func (r *Repository) ListUnlocked(ctx context.Context, userID string) ([]ports.AchievementUnlock, error) {
	var rows []achievementUnlockModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("unlocked_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_unlocked_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	items := make([]ports.AchievementUnlock, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AchievementUnlock{
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			UnlockedAt:    row.UnlockedAt.UTC(),
		})
	}
	return items, nil
}

// UnlockAchievement is an insert-or-ignore on the (user_id,
// achievement_id) key. RowsAffected == 0 means another evaluation got
// there first; callers skip the XP award in that case.
func (r *Repository) UnlockAchievement(ctx context.Context, unlock ports.AchievementUnlock) (bool, error) {
	row := achievementUnlockModel{
		UserID:        strings.TrimSpace(unlock.UserID),
		AchievementID: strings.TrimSpace(unlock.AchievementID),
		UnlockedAt:    unlock.UnlockedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return false, nil
		}
		return false, r.logError("gamification_repo_unlock_achievement_failed", create.Error,
			"user_id", row.UserID,
			"achievement_id", row.AchievementID,
		)
	}
	return create.RowsAffected > 0, nil
}

func (r *Repository) ListBadges(ctx context.Context) ([]ports.Badge, error) {
	var rows []badgeModel
	if err := r.db.WithContext(ctx).
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_badges_failed", err)
	}
	items := make([]ports.Badge, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toBadge())
	}
	return items, nil
}

func (r *Repository) ListUserBadges(ctx context.Context, userID string) ([]ports.UserBadge, error) {
	var rows []userBadgeModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("earned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gamification_repo_list_user_badges_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	items := make([]ports.UserBadge, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.UserBadge{
			UserID:       row.UserID,
			BadgeID:      row.BadgeID,
			EarnedAt:     row.EarnedAt.UTC(),
			IsDisplayed:  row.IsDisplayed,
			DisplayOrder: row.DisplayOrder,
		})
	}
	return items, nil
}

func (r *Repository) AwardBadge(ctx context.Context, award ports.UserBadge) (bool, error) {
	row := userBadgeModel{
		UserID:       strings.TrimSpace(award.UserID),
		BadgeID:      strings.TrimSpace(award.BadgeID),
		EarnedAt:     award.EarnedAt.UTC(),
		IsDisplayed:  award.IsDisplayed,
		DisplayOrder: award.DisplayOrder,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return false, nil
		}
		return false, r.logError("gamification_repo_award_badge_failed", create.Error,
			"user_id", row.UserID,
			"badge_id", row.BadgeID,
		)
	}
	return create.RowsAffected > 0, nil
}

func (r *Repository) UpdateBadgeDisplay(ctx context.Context, userID string, badgeID string, displayed bool, order int) error {
	result := r.db.WithContext(ctx).
		Model(&userBadgeModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("badge_id = ?", strings.TrimSpace(badgeID)).
		Updates(map[string]any{
			"is_displayed":  displayed,
			"display_order": order,
		})
	if result.Error != nil {
		return r.logError("gamification_repo_update_badge_display_failed", result.Error,
			"user_id", strings.TrimSpace(userID),
			"badge_id", strings.TrimSpace(badgeID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBadgeNotOwned
	}
	return nil
}

func (r *Repository) AppendActivity(ctx context.Context, activity ports.Activity) error {
	data, err := json.Marshal(activity.Data)
	if err != nil {
		return r.logError("gamification_repo_append_activity_marshal_failed", err,
			"activity_id", strings.TrimSpace(activity.ActivityID),
		)
	}
	row := activityModel{
		ID:        strings.TrimSpace(activity.ActivityID),
		UserID:    strings.TrimSpace(activity.UserID),
		Type:      strings.TrimSpace(activity.Type),
		Data:      data,
		CreatedAt: activity.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return r.logError("gamification_repo_append_activity_failed", err,
			"activity_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "learning-experience/gamification-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("gamification repository operation failed", fields...)
	return err
}

type userStateModel struct {
	UserID                 string     `gorm:"column:user_id;primaryKey"`
	XPTotal                int        `gorm:"column:xp_total"`
	Level                  int        `gorm:"column:level"`
	StreakCurrent          int        `gorm:"column:streak_current"`
	StreakLongest          int        `gorm:"column:streak_longest"`
	StreakFreezesAvailable int        `gorm:"column:streak_freezes_available"`
	LastDailyClaimAt       *time.Time `gorm:"column:last_daily_claim_at"`
	LastActiveAt           *time.Time `gorm:"column:last_active_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
}

func (userStateModel) TableName() string {
	return "gamification_user_states"
}

func (m userStateModel) toState() ports.UserGamificationState {
	return ports.UserGamificationState{
		UserID:                 m.UserID,
		XPTotal:                m.XPTotal,
		Level:                  m.Level,
		StreakCurrent:          m.StreakCurrent,
		StreakLongest:          m.StreakLongest,
		StreakFreezesAvailable: m.StreakFreezesAvailable,
		LastDailyClaimAt:       normalizeOptionalTime(m.LastDailyClaimAt),
		LastActiveAt:           normalizeOptionalTime(m.LastActiveAt),
		UpdatedAt:              m.UpdatedAt.UTC(),
	}
}

type xpTransactionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id"`
	Amount      int       `gorm:"column:amount"`
	Source      string    `gorm:"column:source"`
	SourceID    string    `gorm:"column:source_id"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (xpTransactionModel) TableName() string {
	return "gamification_xp_transactions"
}

func (m xpTransactionModel) toTransaction() ports.XPTransaction {
	return ports.XPTransaction{
		TransactionID: m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Source:        ports.XPSource(m.Source),
		SourceID:      m.SourceID,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type streakDayModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	DayKey    string    `gorm:"column:day_key;primaryKey"`
	Completed bool      `gorm:"column:completed"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (streakDayModel) TableName() string {
	return "gamification_streak_days"
}

type achievementModel struct {
	ID           string `gorm:"column:id;primaryKey"`
	Slug         string `gorm:"column:slug"`
	Title        string `gorm:"column:title"`
	Description  string `gorm:"column:description"`
	Category     string `gorm:"column:category"`
	CriteriaJSON []byte `gorm:"column:criteria"`
	XPReward     int    `gorm:"column:xp_reward"`
	IsSecret     bool   `gorm:"column:is_secret"`
}

func (achievementModel) TableName() string {
	return "gamification_achievements"
}

func (m achievementModel) toAchievement() (ports.Achievement, error) {
	var parsed criteria.Criteria
	if len(m.CriteriaJSON) > 0 {
		if err := json.Unmarshal(m.CriteriaJSON, &parsed); err != nil {
			return ports.Achievement{}, err
		}
	}
	return ports.Achievement{
		AchievementID: m.ID,
		Slug:          m.Slug,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		Criteria:      parsed,
		XPReward:      m.XPReward,
		IsSecret:      m.IsSecret,
	}, nil
}

type achievementUnlockModel struct {
	UserID        string    `gorm:"column:user_id;primaryKey"`
	AchievementID string    `gorm:"column:achievement_id;primaryKey"`
	UnlockedAt    time.Time `gorm:"column:unlocked_at"`
}

func (achievementUnlockModel) TableName() string {
	return "gamification_achievement_unlocks"
}

type badgeModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	Slug        string `gorm:"column:slug"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`
	Rarity      string `gorm:"column:rarity"`
	IconURL     string `gorm:"column:icon_url"`
}

func (badgeModel) TableName() string {
	return "gamification_badges"
}

func (m badgeModel) toBadge() ports.Badge {
	return ports.Badge{
		BadgeID:     m.ID,
		Slug:        m.Slug,
		Title:       m.Title,
		Description: m.Description,
		Rarity:      ports.BadgeRarity(m.Rarity),
		IconURL:     m.IconURL,
	}
}

type userBadgeModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	BadgeID      string    `gorm:"column:badge_id;primaryKey"`
	EarnedAt     time.Time `gorm:"column:earned_at"`
	IsDisplayed  bool      `gorm:"column:is_displayed"`
	DisplayOrder int       `gorm:"column:display_order"`
}

func (userBadgeModel) TableName() string {
	return "gamification_user_badges"
}

type activityModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	Type      string    `gorm:"column:type"`
	Data      []byte    `gorm:"column:data"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (activityModel) TableName() string {
	return "gamification_activities"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UserStateRepository = (*Repository)(nil)
var _ ports.StreakRepository = (*Repository)(nil)
var _ ports.AchievementRepository = (*Repository)(nil)
var _ ports.BadgeRepository = (*Repository)(nil)
var _ ports.ActivityLog = (*Repository)(nil)
