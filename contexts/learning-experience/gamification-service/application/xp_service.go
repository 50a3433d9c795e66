package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/domain/leveling"
	"aralify/contexts/learning-experience/gamification-service/ports"
	"aralify/internal/shared/events"
)

const topicXPAwarded = "gamification.xp_awarded"

// XPService owns the award-XP operation and the leveling projections.
// The store performs the transaction append plus user-row update as one
// atomic step; everything after commit (activity, events) is best-effort.
type XPService struct {
	Users      ports.UserStateRepository
	Activities ports.ActivityLog
	Events     ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

type AwardXPInput struct {
	UserID      string
	Amount      int
	Source      ports.XPSource
	SourceID    string
	Description string
}

type AwardXPResult struct {
	XPAwarded     int
	NewTotal      int
	LevelUp       bool
	PreviousLevel int
	NewLevel      int
	RankTitle     string
}

func (s XPService) AwardXP(ctx context.Context, input AwardXPInput) (AwardXPResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" || input.Source == "" {
		return AwardXPResult{}, domainerrors.ErrInvalidInput
	}

	now := s.Clock.Now().UTC()
	transactionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return AwardXPResult{}, err
	}

	outcome, err := s.Users.ApplyXPAward(ctx, ports.XPTransaction{
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        input.Amount,
		Source:        input.Source,
		SourceID:      strings.TrimSpace(input.SourceID),
		Description:   strings.TrimSpace(input.Description),
		CreatedAt:     now,
	})
	if err != nil {
		return AwardXPResult{}, err
	}

	result := AwardXPResult{
		XPAwarded:     input.Amount,
		NewTotal:      outcome.NewTotal,
		LevelUp:       outcome.NewLevel > outcome.PreviousLevel,
		PreviousLevel: outcome.PreviousLevel,
		NewLevel:      outcome.NewLevel,
		RankTitle:     leveling.RankTitle(outcome.NewLevel),
	}

	logger := ResolveLogger(s.Logger)
	logger.Info("xp awarded",
		"event", "gamification_xp_awarded",
		"module", "learning-experience/gamification-service",
		"layer", "application",
		"user_id", userID,
		"source", string(input.Source),
		"amount", input.Amount,
		"new_total", outcome.NewTotal,
		"level", outcome.NewLevel,
	)

	if result.LevelUp && s.Activities != nil {
		activityID, idErr := s.IDGen.NewID(ctx)
		if idErr == nil {
			idErr = s.Activities.AppendActivity(ctx, ports.Activity{
				ActivityID: activityID,
				UserID:     userID,
				Type:       "LEVEL_UP",
				Data: map[string]any{
					"previous_level": outcome.PreviousLevel,
					"new_level":      outcome.NewLevel,
					"rank_title":     result.RankTitle,
				},
				CreatedAt: now,
			})
		}
		if idErr != nil {
			logger.Warn("level up activity write failed",
				"event", "gamification_activity_write_failed",
				"module", "learning-experience/gamification-service",
				"layer", "application",
				"user_id", userID,
				"error", idErr.Error(),
			)
		}
	}

	if s.Events != nil {
		eventID, idErr := s.IDGen.NewID(ctx)
		if idErr == nil {
			idErr = s.Events.Publish(ctx, topicXPAwarded, events.Envelope{
				EventID:        eventID,
				EventType:      "gamification.xp_awarded",
				SourceService:  "gamification-service",
				OccurredAtUTC:  now,
				EntityType:     "user",
				EntityID:       userID,
				PayloadVersion: 1,
				Payload: map[string]any{
					"amount":    input.Amount,
					"source":    string(input.Source),
					"new_total": outcome.NewTotal,
					"new_level": outcome.NewLevel,
					"level_up":  result.LevelUp,
				},
			})
		}
		if idErr != nil {
			logger.Warn("xp awarded event publish failed",
				"event", "gamification_event_publish_failed",
				"module", "learning-experience/gamification-service",
				"layer", "application",
				"user_id", userID,
				"error", idErr.Error(),
			)
		}
	}

	return result, nil
}

// LevelProgress reports the user's position inside the current level band.
func (s XPService) LevelProgress(ctx context.Context, userID string) (leveling.Progress, error) {
	state, err := s.Users.GetUserState(ctx, strings.TrimSpace(userID))
	if err != nil {
		return leveling.Progress{}, err
	}
	return leveling.ProgressForXP(state.XPTotal), nil
}

// ListTransactions returns the most recent audit rows for a user.
func (s XPService) ListTransactions(ctx context.Context, userID string, limit int) ([]ports.XPTransaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	return s.Users.ListXPTransactions(ctx, userID, limit)
}
