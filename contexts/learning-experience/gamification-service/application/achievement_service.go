package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"aralify/contexts/learning-experience/gamification-service/domain/criteria"
	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// AchievementService evaluates the catalog against a user's aggregate
// stats and unlocks newly-satisfied achievements. The unlock upsert is
// the at-most-once guard: the XP reward is only paid when the upsert
// actually created the row.
type AchievementService struct {
	Achievements ports.AchievementRepository
	Stats        ports.StatsSource
	Activities   ports.ActivityLog
	XP           XPService
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// AchievementEvaluation is one catalog entry merged with unlock state and
// live progress.
type AchievementEvaluation struct {
	Achievement   ports.Achievement
	IsUnlocked    bool
	NewlyUnlocked bool
	CurrentValue  int
	TargetValue   int
	Progress      float64
	XPAwarded     int
}

type ListAchievementsOptions struct {
	Category      string
	IncludeSecret bool
}

// Evaluate runs every locked achievement's criteria and unlocks the ones
// now satisfied. Already-unlocked achievements are returned with full
// progress but are never re-evaluated or re-awarded.
func (s AchievementService) Evaluate(ctx context.Context, userID string) ([]AchievementEvaluation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	catalog, err := s.Achievements.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.Achievements.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedSet := make(map[string]bool, len(unlocked))
	for _, unlock := range unlocked {
		unlockedSet[unlock.AchievementID] = true
	}

	snapshot, err := s.Stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	logger := ResolveLogger(s.Logger)
	evaluations := make([]AchievementEvaluation, 0, len(catalog))

	for _, achievement := range catalog {
		if unlockedSet[achievement.AchievementID] {
			evaluations = append(evaluations, unlockedEvaluation(achievement, snapshot))
			continue
		}

		progress := criteria.Evaluate(achievement.Criteria, snapshot)
		evaluation := AchievementEvaluation{
			Achievement:  achievement,
			CurrentValue: progress.CurrentValue,
			TargetValue:  progress.TargetValue,
			Progress:     progress.Percent,
		}
		if !progress.Met {
			evaluations = append(evaluations, evaluation)
			continue
		}

		created, err := s.Achievements.UnlockAchievement(ctx, ports.AchievementUnlock{
			UserID:        userID,
			AchievementID: achievement.AchievementID,
			UnlockedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		evaluation.IsUnlocked = true
		evaluation.Progress = 100

		if created {
			evaluation.NewlyUnlocked = true
			if achievement.XPReward > 0 {
				if _, awardErr := s.XP.AwardXP(ctx, AwardXPInput{
					UserID:      userID,
					Amount:      achievement.XPReward,
					Source:      ports.SourceAchievement,
					SourceID:    achievement.AchievementID,
					Description: "Achievement unlocked: " + achievement.Title,
				}); awardErr != nil {
					return nil, awardErr
				}
				evaluation.XPAwarded = achievement.XPReward
			}

			logger.Info("achievement unlocked",
				"event", "gamification_achievement_unlocked",
				"module", "learning-experience/gamification-service",
				"layer", "application",
				"user_id", userID,
				"achievement_slug", achievement.Slug,
				"xp_reward", achievement.XPReward,
			)
			s.appendActivity(ctx, userID, achievement, now)
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, nil
}

// List merges catalog, unlock state, and live progress for display.
// Secret achievements stay hidden until unlocked unless explicitly
// requested.
func (s AchievementService) List(ctx context.Context, userID string, opts ListAchievementsOptions) ([]AchievementEvaluation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	catalog, err := s.Achievements.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.Achievements.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedSet := make(map[string]bool, len(unlocked))
	for _, unlock := range unlocked {
		unlockedSet[unlock.AchievementID] = true
	}

	snapshot, err := s.Stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]AchievementEvaluation, 0, len(catalog))
	for _, achievement := range catalog {
		if opts.Category != "" && achievement.Category != opts.Category {
			continue
		}
		isUnlocked := unlockedSet[achievement.AchievementID]
		if achievement.IsSecret && !isUnlocked && !opts.IncludeSecret {
			continue
		}

		if isUnlocked {
			items = append(items, unlockedEvaluation(achievement, snapshot))
			continue
		}
		progress := criteria.Evaluate(achievement.Criteria, snapshot)
		items = append(items, AchievementEvaluation{
			Achievement:  achievement,
			CurrentValue: progress.CurrentValue,
			TargetValue:  progress.TargetValue,
			Progress:     progress.Percent,
		})
	}
	return items, nil
}

// unlockedEvaluation backfills an unlocked catalog entry with the
// criteria's real target. The live current value can sit below the
// target (a streak that lapsed after unlocking), so it is floored at
// the target to keep the display consistent with the 100% progress.
func unlockedEvaluation(achievement ports.Achievement, snapshot stats.Snapshot) AchievementEvaluation {
	progress := criteria.Evaluate(achievement.Criteria, snapshot)
	current := progress.CurrentValue
	if current < progress.TargetValue {
		current = progress.TargetValue
	}
	return AchievementEvaluation{
		Achievement:  achievement,
		IsUnlocked:   true,
		CurrentValue: current,
		TargetValue:  progress.TargetValue,
		Progress:     100,
	}
}

func (s AchievementService) appendActivity(ctx context.Context, userID string, achievement ports.Achievement, at time.Time) {
	if s.Activities == nil {
		return
	}
	activityID, err := s.IDGen.NewID(ctx)
	if err == nil {
		err = s.Activities.AppendActivity(ctx, ports.Activity{
			ActivityID: activityID,
			UserID:     userID,
			Type:       "ACHIEVEMENT_UNLOCKED",
			Data: map[string]any{
				"achievement_id": achievement.AchievementID,
				"slug":           achievement.Slug,
				"title":          achievement.Title,
				"xp_reward":      achievement.XPReward,
			},
			CreatedAt: at,
		})
	}
	if err != nil {
		ResolveLogger(s.Logger).Warn("achievement activity write failed",
			"event", "gamification_activity_write_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"achievement_slug", achievement.Slug,
			"error", err.Error(),
		)
	}
}
