package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/leveling"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// Orchestrator sequences the gamification pipeline behind completion
// events: XP award, streak update, achievement evaluation, badge
// evaluation, activity logging. XP and streak are the committed core;
// achievement and badge evaluation are best-effort and never roll the
// core back.
type Orchestrator struct {
	Users        ports.UserStateRepository
	Activities   ports.ActivityLog
	Cache        ports.LeaderboardCache
	XP           XPService
	Streaks      StreakService
	Achievements AchievementService
	Badges       BadgeService
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

type CompletionResult struct {
	XP              AwardXPResult
	Streak          UpdateStreakResult
	NewAchievements []AchievementEvaluation
	NewBadges       []string
}

type LessonCompletionInput struct {
	UserID     string
	LessonID   string
	XPEarned   int
	Difficulty string
	Title      string
}

func (o Orchestrator) OnLessonComplete(ctx context.Context, input LessonCompletionInput) (CompletionResult, error) {
	description := "Completed lesson"
	if strings.TrimSpace(input.Title) != "" {
		description = "Completed lesson: " + strings.TrimSpace(input.Title)
	}
	return o.runPipeline(ctx, input.UserID, AwardXPInput{
		UserID:      input.UserID,
		Amount:      input.XPEarned,
		Source:      ports.SourceLessonComplete,
		SourceID:    input.LessonID,
		Description: description,
	}, "LESSON_COMPLETE", map[string]any{
		"lesson_id":  strings.TrimSpace(input.LessonID),
		"difficulty": strings.TrimSpace(input.Difficulty),
		"title":      strings.TrimSpace(input.Title),
		"xp_earned":  input.XPEarned,
	})
}

type QuizCompletionInput struct {
	UserID   string
	QuizID   string
	XPEarned int
	Score    int
}

func (o Orchestrator) OnQuizComplete(ctx context.Context, input QuizCompletionInput) (CompletionResult, error) {
	return o.runPipeline(ctx, input.UserID, AwardXPInput{
		UserID:      input.UserID,
		Amount:      input.XPEarned,
		Source:      ports.SourceQuizComplete,
		SourceID:    input.QuizID,
		Description: "Completed quiz",
	}, "QUIZ_COMPLETE", map[string]any{
		"quiz_id":   strings.TrimSpace(input.QuizID),
		"score":     input.Score,
		"xp_earned": input.XPEarned,
	})
}

type ChallengeCompletionInput struct {
	UserID      string
	ChallengeID string
	XPEarned    int
}

func (o Orchestrator) OnChallengeComplete(ctx context.Context, input ChallengeCompletionInput) (CompletionResult, error) {
	return o.runPipeline(ctx, input.UserID, AwardXPInput{
		UserID:      input.UserID,
		Amount:      input.XPEarned,
		Source:      ports.SourceChallengeComplete,
		SourceID:    input.ChallengeID,
		Description: "Completed challenge",
	}, "CHALLENGE_COMPLETE", map[string]any{
		"challenge_id": strings.TrimSpace(input.ChallengeID),
		"xp_earned":    input.XPEarned,
	})
}

func (o Orchestrator) runPipeline(
	ctx context.Context,
	userID string,
	award AwardXPInput,
	activityType string,
	activityData map[string]any,
) (CompletionResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CompletionResult{}, domainerrors.ErrInvalidInput
	}

	xpResult, err := o.XP.AwardXP(ctx, award)
	if err != nil {
		return CompletionResult{}, err
	}
	streakResult, err := o.Streaks.UpdateStreak(ctx, userID)
	if err != nil {
		return CompletionResult{XP: xpResult}, err
	}

	result := CompletionResult{
		XP:              xpResult,
		Streak:          streakResult,
		NewAchievements: make([]AchievementEvaluation, 0),
		NewBadges:       make([]string, 0),
	}

	logger := ResolveLogger(o.Logger)
	evaluations, err := o.Achievements.Evaluate(ctx, userID)
	if err != nil {
		logger.Error("achievement evaluation failed",
			"event", "gamification_achievement_eval_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	} else {
		for _, evaluation := range evaluations {
			if evaluation.NewlyUnlocked {
				result.NewAchievements = append(result.NewAchievements, evaluation)
			}
		}
	}

	badges, err := o.Badges.Evaluate(ctx, userID)
	if err != nil {
		logger.Error("badge evaluation failed",
			"event", "gamification_badge_eval_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	} else {
		result.NewBadges = badges
	}

	o.appendActivity(ctx, userID, activityType, activityData)
	return result, nil
}

// Profile is the aggregated gamification view for a user.
type Profile struct {
	UserID               string
	XPTotal              int
	Level                int
	RankTitle            string
	LevelProgress        leveling.Progress
	Streak               StreakInfo
	AchievementsTotal    int
	AchievementsUnlocked int
	DisplayedBadges      []OwnedBadge
}

func (o Orchestrator) Profile(ctx context.Context, userID string) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, domainerrors.ErrInvalidInput
	}

	state, err := o.Users.GetUserState(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	streakInfo, err := o.Streaks.StreakInfo(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	achievements, err := o.Achievements.List(ctx, userID, ListAchievementsOptions{IncludeSecret: true})
	if err != nil {
		return Profile{}, err
	}
	unlockedCount := 0
	for _, item := range achievements {
		if item.IsUnlocked {
			unlockedCount++
		}
	}
	ownedBadges, err := o.Badges.ListOwned(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	displayed := make([]OwnedBadge, 0, MaxDisplayedBadges)
	for _, badge := range ownedBadges {
		if badge.IsDisplayed {
			displayed = append(displayed, badge)
		}
	}
	sort.Slice(displayed, func(i, j int) bool {
		return displayed[i].DisplayOrder < displayed[j].DisplayOrder
	})

	return Profile{
		UserID:               userID,
		XPTotal:              state.XPTotal,
		Level:                state.Level,
		RankTitle:            leveling.RankTitle(state.Level),
		LevelProgress:        leveling.ProgressForXP(state.XPTotal),
		Streak:               streakInfo,
		AchievementsTotal:    len(achievements),
		AchievementsUnlocked: unlockedCount,
		DisplayedBadges:      displayed,
	}, nil
}

// Leaderboard serves ranked users, preferring the cache when it is warm.
func (o Orchestrator) Leaderboard(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if o.Cache != nil {
		entries, warm, err := o.Cache.TopEntries(ctx, limit, offset)
		if err == nil && warm {
			return entries, nil
		}
		if err != nil {
			ResolveLogger(o.Logger).Warn("leaderboard cache read failed",
				"event", "gamification_cache_read_failed",
				"module", "learning-experience/gamification-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}
	return o.Users.ListLeaderboard(ctx, limit, offset)
}

// LevelSystemInfo describes the level curve and rank table. This endpoint
// is the canonical statement of the leveling formula.
type LevelSystemInfo struct {
	Formula    string
	MaxLevel   int
	Ranks      []leveling.Rank
	Milestones []LevelThreshold
}

type LevelThreshold struct {
	Level      int
	XPRequired int
}

func (o Orchestrator) LevelSystemInfo() LevelSystemInfo {
	thresholds := make([]LevelThreshold, 0, 10)
	for _, level := range []int{1, 2, 5, 10, 20, 30, 50, 75, 100} {
		thresholds = append(thresholds, LevelThreshold{
			Level:      level,
			XPRequired: leveling.XPForLevel(level),
		})
	}
	return LevelSystemInfo{
		Formula:    "xpForLevel(n) = floor(100 * n^1.5)",
		MaxLevel:   leveling.MaxLevel,
		Ranks:      leveling.Ranks,
		Milestones: thresholds,
	}
}

func (o Orchestrator) appendActivity(ctx context.Context, userID, activityType string, data map[string]any) {
	if o.Activities == nil {
		return
	}
	now := o.Clock.Now().UTC()
	activityID, err := o.IDGen.NewID(ctx)
	if err == nil {
		err = o.Activities.AppendActivity(ctx, ports.Activity{
			ActivityID: activityID,
			UserID:     userID,
			Type:       activityType,
			Data:       data,
			CreatedAt:  now,
		})
	}
	if err != nil {
		ResolveLogger(o.Logger).Warn("completion activity write failed",
			"event", "gamification_activity_write_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"activity_type", activityType,
			"error", err.Error(),
		)
	}
}
