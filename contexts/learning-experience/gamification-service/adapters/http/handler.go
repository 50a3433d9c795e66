package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"aralify/contexts/learning-experience/gamification-service/application"
	httptransport "aralify/contexts/learning-experience/gamification-service/transport/http"
)

type Handler struct {
	Orchestrator application.Orchestrator
	Logger       *slog.Logger
}

func (h Handler) CompleteLessonHandler(ctx context.Context, req httptransport.CompleteLessonRequest) (httptransport.CompletionResponse, error) {
	result, err := h.Orchestrator.OnLessonComplete(ctx, application.LessonCompletionInput{
		UserID:     req.UserID,
		LessonID:   req.LessonID,
		XPEarned:   req.XPEarned,
		Difficulty: req.Difficulty,
		Title:      req.Title,
	})
	if err != nil {
		return httptransport.CompletionResponse{}, err
	}
	return completionResponse(result), nil
}

func (h Handler) CompleteQuizHandler(ctx context.Context, req httptransport.CompleteQuizRequest) (httptransport.CompletionResponse, error) {
	result, err := h.Orchestrator.OnQuizComplete(ctx, application.QuizCompletionInput{
		UserID:   req.UserID,
		QuizID:   req.QuizID,
		XPEarned: req.XPEarned,
		Score:    req.Score,
	})
	if err != nil {
		return httptransport.CompletionResponse{}, err
	}
	return completionResponse(result), nil
}

func (h Handler) CompleteChallengeHandler(ctx context.Context, req httptransport.CompleteChallengeRequest) (httptransport.CompletionResponse, error) {
	result, err := h.Orchestrator.OnChallengeComplete(ctx, application.ChallengeCompletionInput{
		UserID:      req.UserID,
		ChallengeID: req.ChallengeID,
		XPEarned:    req.XPEarned,
	})
	if err != nil {
		return httptransport.CompletionResponse{}, err
	}
	return completionResponse(result), nil
}

func (h Handler) ClaimDailyBonusHandler(ctx context.Context, req httptransport.ClaimDailyBonusRequest) (httptransport.ClaimDailyBonusResponse, error) {
	result, err := h.Orchestrator.Streaks.ClaimDailyBonus(ctx, req.UserID)
	if err != nil {
		return httptransport.ClaimDailyBonusResponse{}, err
	}
	resp := httptransport.ClaimDailyBonusResponse{Status: "success"}
	resp.Data.Success = result.Success
	resp.Data.AlreadyClaimed = result.AlreadyClaimed
	resp.Data.XPEarned = result.XPEarned
	resp.Data.Streak = result.Streak
	resp.Data.NextClaimDay = result.NextClaimDay
	return resp, nil
}

func (h Handler) GetStreakHandler(ctx context.Context, userID string) (httptransport.StreakInfoResponse, error) {
	info, err := h.Orchestrator.Streaks.StreakInfo(ctx, userID)
	if err != nil {
		return httptransport.StreakInfoResponse{}, err
	}
	resp := httptransport.StreakInfoResponse{Status: "success"}
	resp.Data.CurrentStreak = info.CurrentStreak
	resp.Data.LongestStreak = info.LongestStreak
	resp.Data.FreezesAvailable = info.FreezesAvailable
	resp.Data.IsStreakActive = info.IsStreakActive
	resp.Data.StreakAtRisk = info.StreakAtRisk
	resp.Data.NextMilestone = info.NextMilestone
	resp.Data.DaysRemaining = info.DaysRemaining
	resp.Data.CanClaimBonus = info.CanClaimBonus
	return resp, nil
}

func (h Handler) GetProfileHandler(ctx context.Context, userID string) (httptransport.ProfileResponse, error) {
	profile, err := h.Orchestrator.Profile(ctx, userID)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	resp := httptransport.ProfileResponse{Status: "success"}
	resp.Data.UserID = profile.UserID
	resp.Data.XPTotal = profile.XPTotal
	resp.Data.Level = profile.Level
	resp.Data.RankTitle = profile.RankTitle
	resp.Data.LevelProgress = httptransport.LevelProgressDTO{
		CurrentLevel:    profile.LevelProgress.CurrentLevel,
		CurrentLevelXP:  profile.LevelProgress.CurrentLevelXP,
		NextLevelXP:     profile.LevelProgress.NextLevelXP,
		ProgressXP:      profile.LevelProgress.ProgressXP,
		ProgressPercent: profile.LevelProgress.ProgressPercent,
	}
	resp.Data.CurrentStreak = profile.Streak.CurrentStreak
	resp.Data.LongestStreak = profile.Streak.LongestStreak
	resp.Data.AchievementsTotal = profile.AchievementsTotal
	resp.Data.AchievementsUnlocked = profile.AchievementsUnlocked
	resp.Data.DisplayedBadges = make([]httptransport.OwnedBadgeDTO, 0, len(profile.DisplayedBadges))
	for _, badge := range profile.DisplayedBadges {
		resp.Data.DisplayedBadges = append(resp.Data.DisplayedBadges, ownedBadgeDTO(badge))
	}
	return resp, nil
}

func (h Handler) GetLevelSystemHandler(_ context.Context) httptransport.LevelSystemResponse {
	info := h.Orchestrator.LevelSystemInfo()
	resp := httptransport.LevelSystemResponse{Status: "success"}
	resp.Data.Formula = info.Formula
	resp.Data.MaxLevel = info.MaxLevel
	resp.Data.Ranks = make([]httptransport.RankDTO, 0, len(info.Ranks))
	for _, rank := range info.Ranks {
		resp.Data.Ranks = append(resp.Data.Ranks, httptransport.RankDTO{
			MinLevel: rank.MinLevel,
			Title:    rank.Title,
		})
	}
	resp.Data.Milestones = make([]httptransport.LevelThresholdDTO, 0, len(info.Milestones))
	for _, threshold := range info.Milestones {
		resp.Data.Milestones = append(resp.Data.Milestones, httptransport.LevelThresholdDTO{
			Level:      threshold.Level,
			XPRequired: threshold.XPRequired,
		})
	}
	return resp
}

func (h Handler) GetLeaderboardHandler(ctx context.Context, limit int, offset int) (httptransport.LeaderboardResponse, error) {
	entries, err := h.Orchestrator.Leaderboard(ctx, limit, offset)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	resp := httptransport.LeaderboardResponse{
		Status: "success",
		Data:   make([]httptransport.LeaderboardEntryDTO, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Data = append(resp.Data, httptransport.LeaderboardEntryDTO{
			Rank:    entry.Rank,
			UserID:  entry.UserID,
			XPTotal: entry.XPTotal,
			Level:   entry.Level,
		})
	}
	return resp, nil
}

func (h Handler) ListAchievementsHandler(ctx context.Context, userID string, category string) (httptransport.AchievementListResponse, error) {
	items, err := h.Orchestrator.Achievements.List(ctx, userID, application.ListAchievementsOptions{
		Category: category,
	})
	if err != nil {
		return httptransport.AchievementListResponse{}, err
	}
	resp := httptransport.AchievementListResponse{
		Status: "success",
		Data:   make([]httptransport.AchievementDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, httptransport.AchievementDTO{
			AchievementID: item.Achievement.AchievementID,
			Slug:          item.Achievement.Slug,
			Title:         item.Achievement.Title,
			Description:   item.Achievement.Description,
			Category:      item.Achievement.Category,
			XPReward:      item.Achievement.XPReward,
			IsSecret:      item.Achievement.IsSecret,
			IsUnlocked:    item.IsUnlocked,
			CurrentValue:  item.CurrentValue,
			TargetValue:   item.TargetValue,
			Progress:      item.Progress,
		})
	}
	return resp, nil
}

func (h Handler) ListBadgesHandler(ctx context.Context, userID string) (httptransport.BadgeListResponse, error) {
	items, err := h.Orchestrator.Badges.ListOwned(ctx, userID)
	if err != nil {
		return httptransport.BadgeListResponse{}, err
	}
	resp := httptransport.BadgeListResponse{
		Status: "success",
		Data:   make([]httptransport.OwnedBadgeDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, ownedBadgeDTO(item))
	}
	return resp, nil
}

func (h Handler) SetBadgeDisplayHandler(ctx context.Context, userID string, badgeID string, req httptransport.SetBadgeDisplayRequest) (httptransport.SetBadgeDisplayResponse, error) {
	var err error
	if req.Displayed {
		err = h.Orchestrator.Badges.SetDisplayed(ctx, userID, badgeID, req.Order)
	} else {
		err = h.Orchestrator.Badges.RemoveDisplay(ctx, userID, badgeID)
	}
	if err != nil {
		return httptransport.SetBadgeDisplayResponse{}, err
	}
	return httptransport.SetBadgeDisplayResponse{Status: "success"}, nil
}

func (h Handler) GrantBadgeHandler(ctx context.Context, req httptransport.GrantBadgeRequest) (httptransport.GrantBadgeResponse, error) {
	granted, err := h.Orchestrator.Badges.Grant(ctx, req.UserID, req.Slug)
	if err != nil {
		return httptransport.GrantBadgeResponse{}, err
	}
	resp := httptransport.GrantBadgeResponse{Status: "success"}
	resp.Data.Granted = granted
	resp.Data.Slug = req.Slug
	return resp, nil
}

func (h Handler) ListTransactionsHandler(ctx context.Context, userID string, limit int) (httptransport.XPTransactionListResponse, error) {
	items, err := h.Orchestrator.XP.ListTransactions(ctx, userID, limit)
	if err != nil {
		return httptransport.XPTransactionListResponse{}, err
	}
	resp := httptransport.XPTransactionListResponse{
		Status: "success",
		Data:   make([]httptransport.XPTransactionDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, httptransport.XPTransactionDTO{
			TransactionID: item.TransactionID,
			Amount:        item.Amount,
			Source:        string(item.Source),
			SourceID:      item.SourceID,
			Description:   item.Description,
			CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func completionResponse(result application.CompletionResult) httptransport.CompletionResponse {
	resp := httptransport.CompletionResponse{Status: "success"}
	resp.Data.XP = httptransport.XPAwardDTO{
		XPAwarded:     result.XP.XPAwarded,
		NewTotal:      result.XP.NewTotal,
		LevelUp:       result.XP.LevelUp,
		PreviousLevel: result.XP.PreviousLevel,
		NewLevel:      result.XP.NewLevel,
		RankTitle:     result.XP.RankTitle,
	}
	resp.Data.Streak = httptransport.StreakUpdateDTO{
		StreakUpdated:    result.Streak.StreakUpdated,
		CurrentStreak:    result.Streak.NewStreak,
		LongestStreak:    result.Streak.LongestStreak,
		FreezeConsumed:   result.Streak.FreezeConsumed,
		FreezeEarned:     result.Streak.FreezeEarned,
		FreezesAvailable: result.Streak.FreezesAvailable,
		MilestoneReached: result.Streak.MilestoneReached,
		MilestoneBonusXP: result.Streak.MilestoneBonusXP,
	}
	resp.Data.NewAchievements = make([]httptransport.UnlockedAchievementDTO, 0, len(result.NewAchievements))
	for _, evaluation := range result.NewAchievements {
		resp.Data.NewAchievements = append(resp.Data.NewAchievements, httptransport.UnlockedAchievementDTO{
			Slug:      evaluation.Achievement.Slug,
			Title:     evaluation.Achievement.Title,
			XPAwarded: evaluation.XPAwarded,
		})
	}
	resp.Data.NewBadges = result.NewBadges
	if resp.Data.NewBadges == nil {
		resp.Data.NewBadges = make([]string, 0)
	}
	return resp
}

func ownedBadgeDTO(badge application.OwnedBadge) httptransport.OwnedBadgeDTO {
	return httptransport.OwnedBadgeDTO{
		BadgeID:      badge.Badge.BadgeID,
		Slug:         badge.Badge.Slug,
		Title:        badge.Badge.Title,
		Description:  badge.Badge.Description,
		Rarity:       string(badge.Badge.Rarity),
		IconURL:      badge.Badge.IconURL,
		EarnedAt:     badge.EarnedAt.UTC().Format(time.RFC3339),
		IsDisplayed:  badge.IsDisplayed,
		DisplayOrder: badge.DisplayOrder,
	}
}
