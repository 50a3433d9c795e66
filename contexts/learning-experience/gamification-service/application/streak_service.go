package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/streakcal"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// StreakService drives the per-user daily-activity state machine.
// Day boundaries are UTC; the (user, day) history uniqueness makes every
// transition idempotent within a calendar day.
type StreakService struct {
	Users      ports.UserStateRepository
	Streaks    ports.StreakRepository
	Activities ports.ActivityLog
	XP         XPService
	Clock      ports.Clock
	Logger     *slog.Logger
}

type UpdateStreakResult struct {
	StreakUpdated    bool
	PreviousStreak   int
	NewStreak        int
	LongestStreak    int
	FreezeConsumed   bool
	FreezeEarned     bool
	FreezesAvailable int
	MilestoneReached int
	MilestoneBonusXP int
}

type ClaimDailyBonusResult struct {
	Success        bool
	AlreadyClaimed bool
	XPEarned       int
	Streak         int
	NextClaimDay   string
}

type StreakInfo struct {
	CurrentStreak    int
	LongestStreak    int
	FreezesAvailable int
	IsStreakActive   bool
	StreakAtRisk     bool
	NextMilestone    int
	DaysRemaining    int
	CanClaimBonus    bool
}

// UpdateStreak credits today's activity. Calling it twice on the same UTC
// day is a no-op on the second call.
func (s StreakService) UpdateStreak(ctx context.Context, userID string) (UpdateStreakResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UpdateStreakResult{}, domainerrors.ErrInvalidInput
	}

	state, err := s.Users.GetUserState(ctx, userID)
	if err != nil {
		return UpdateStreakResult{}, err
	}

	now := s.Clock.Now().UTC()
	today := streakcal.DayKey(now)

	lastDay, hasHistory, err := s.Streaks.GetLatestStreakDay(ctx, userID)
	if err != nil {
		return UpdateStreakResult{}, err
	}

	gap := streakcal.GapBroken
	if hasHistory {
		gap = streakcal.Classify(lastDay, today)
	}

	if gap == streakcal.GapSameDay {
		return UpdateStreakResult{
			StreakUpdated:    false,
			PreviousStreak:   state.StreakCurrent,
			NewStreak:        state.StreakCurrent,
			LongestStreak:    state.StreakLongest,
			FreezesAvailable: state.StreakFreezesAvailable,
		}, nil
	}

	newStreak := 1
	freezes := state.StreakFreezesAvailable
	freezeConsumed := false

	switch gap {
	case streakcal.GapNextDay:
		newStreak = state.StreakCurrent + 1
	case streakcal.GapOneMissedDay:
		if freezes > 0 {
			freezes--
			freezeConsumed = true
			newStreak = state.StreakCurrent + 1
		}
	}

	freezeEarned := false
	if newStreak%streakcal.FreezeEarnInterval == 0 && freezes < streakcal.MaxFreezes {
		freezes++
		freezeEarned = true
	}

	longest := state.StreakLongest
	if newStreak > longest {
		longest = newStreak
	}

	updated, created, err := s.Streaks.ApplyStreakUpdate(ctx, userID, ports.StreakUpdate{
		DayKey:           today,
		Current:          newStreak,
		Longest:          longest,
		FreezesAvailable: freezes,
		LastActiveAt:     now,
	})
	if err != nil {
		return UpdateStreakResult{}, err
	}
	if !created {
		// A concurrent request credited the day between the history read
		// and the write; its counters stand and no bonus is due here.
		return UpdateStreakResult{
			StreakUpdated:    false,
			PreviousStreak:   updated.StreakCurrent,
			NewStreak:        updated.StreakCurrent,
			LongestStreak:    updated.StreakLongest,
			FreezesAvailable: updated.StreakFreezesAvailable,
		}, nil
	}

	result := UpdateStreakResult{
		StreakUpdated:    true,
		PreviousStreak:   state.StreakCurrent,
		NewStreak:        updated.StreakCurrent,
		LongestStreak:    updated.StreakLongest,
		FreezeConsumed:   freezeConsumed,
		FreezeEarned:     freezeEarned,
		FreezesAvailable: updated.StreakFreezesAvailable,
	}

	logger := ResolveLogger(s.Logger)
	logger.Info("streak updated",
		"event", "gamification_streak_updated",
		"module", "learning-experience/gamification-service",
		"layer", "application",
		"user_id", userID,
		"previous_streak", state.StreakCurrent,
		"new_streak", newStreak,
		"freeze_consumed", freezeConsumed,
		"freezes_available", freezes,
	)

	if bonus, ok := streakcal.MilestoneBonus(newStreak); ok {
		result.MilestoneReached = newStreak
		result.MilestoneBonusXP = bonus
		if _, awardErr := s.XP.AwardXP(ctx, AwardXPInput{
			UserID:      userID,
			Amount:      bonus,
			Source:      ports.SourceStreakBonus,
			SourceID:    fmt.Sprintf("streak-%d", newStreak),
			Description: fmt.Sprintf("%d-day streak milestone", newStreak),
		}); awardErr != nil {
			// The streak itself is committed; surface the missing bonus.
			return result, awardErr
		}
		s.appendActivity(ctx, userID, "STREAK_MILESTONE", map[string]any{
			"streak":   newStreak,
			"bonus_xp": bonus,
		}, now)
	}

	return result, nil
}

// ClaimDailyBonus pays the daily XP bonus once per UTC day. The streak is
// updated first so the bonus reflects today's activity.
func (s StreakService) ClaimDailyBonus(ctx context.Context, userID string) (ClaimDailyBonusResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ClaimDailyBonusResult{}, domainerrors.ErrInvalidInput
	}

	if _, err := s.UpdateStreak(ctx, userID); err != nil {
		return ClaimDailyBonusResult{}, err
	}

	state, err := s.Users.GetUserState(ctx, userID)
	if err != nil {
		return ClaimDailyBonusResult{}, err
	}

	now := s.Clock.Now().UTC()
	today := streakcal.DayKey(now)
	if state.LastDailyClaimAt != nil && streakcal.DayKey(*state.LastDailyClaimAt) == today {
		return ClaimDailyBonusResult{
			Success:        false,
			AlreadyClaimed: true,
			Streak:         state.StreakCurrent,
			NextClaimDay:   streakcal.DayKey(now.Add(24 * time.Hour)),
		}, nil
	}

	// The conditional claim write is the race guard: only the request
	// that moves last_daily_claim_at into today gets paid.
	won, err := s.Streaks.ClaimDailyBonusDay(ctx, userID, now)
	if err != nil {
		return ClaimDailyBonusResult{}, err
	}
	if !won {
		return ClaimDailyBonusResult{
			Success:        false,
			AlreadyClaimed: true,
			Streak:         state.StreakCurrent,
			NextClaimDay:   streakcal.DayKey(now.Add(24 * time.Hour)),
		}, nil
	}

	bonus := streakcal.DailyBonusBase
	if milestone, ok := streakcal.MilestoneBonus(state.StreakCurrent); ok {
		bonus += milestone
	}

	if _, err := s.XP.AwardXP(ctx, AwardXPInput{
		UserID:      userID,
		Amount:      bonus,
		Source:      ports.SourceDailyBonus,
		SourceID:    today,
		Description: "Daily bonus",
	}); err != nil {
		return ClaimDailyBonusResult{}, err
	}

	s.appendActivity(ctx, userID, "DAILY_BONUS", map[string]any{
		"bonus_xp": bonus,
		"streak":   state.StreakCurrent,
	}, now)

	return ClaimDailyBonusResult{
		Success:      true,
		XPEarned:     bonus,
		Streak:       state.StreakCurrent,
		NextClaimDay: streakcal.DayKey(now.Add(24 * time.Hour)),
	}, nil
}

// StreakInfo is a read-only projection of the user's streak position.
func (s StreakService) StreakInfo(ctx context.Context, userID string) (StreakInfo, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StreakInfo{}, domainerrors.ErrInvalidInput
	}

	state, err := s.Users.GetUserState(ctx, userID)
	if err != nil {
		return StreakInfo{}, err
	}

	now := s.Clock.Now().UTC()
	today := streakcal.DayKey(now)

	info := StreakInfo{
		CurrentStreak:    state.StreakCurrent,
		LongestStreak:    state.StreakLongest,
		FreezesAvailable: state.StreakFreezesAvailable,
		CanClaimBonus:    true,
	}

	lastDay, hasHistory, err := s.Streaks.GetLatestStreakDay(ctx, userID)
	if err != nil {
		return StreakInfo{}, err
	}
	if hasHistory {
		switch streakcal.Classify(lastDay, today) {
		case streakcal.GapSameDay:
			info.IsStreakActive = true
		case streakcal.GapNextDay:
			info.IsStreakActive = true
			info.StreakAtRisk = true
		}
	}

	if milestone, ok := streakcal.NextMilestone(state.StreakCurrent); ok {
		info.NextMilestone = milestone.Days
		info.DaysRemaining = milestone.Days - state.StreakCurrent
	}

	if state.LastDailyClaimAt != nil && streakcal.DayKey(*state.LastDailyClaimAt) == today {
		info.CanClaimBonus = false
	}
	return info, nil
}

func (s StreakService) appendActivity(ctx context.Context, userID, activityType string, data map[string]any, at time.Time) {
	if s.Activities == nil {
		return
	}
	activityID, err := s.XP.IDGen.NewID(ctx)
	if err == nil {
		err = s.Activities.AppendActivity(ctx, ports.Activity{
			ActivityID: activityID,
			UserID:     userID,
			Type:       activityType,
			Data:       data,
			CreatedAt:  at,
		})
	}
	if err != nil {
		ResolveLogger(s.Logger).Warn("streak activity write failed",
			"event", "gamification_activity_write_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"activity_type", activityType,
			"error", err.Error(),
		)
	}
}
