package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"aralify/contexts/learning-experience/gamification-service/domain/badgerules"
	domainerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// MaxDisplayedBadges caps the user-curated display shelf.
const MaxDisplayedBadges = 5

// BadgeService evaluates the automatic badge rules and manages the
// display shelf. Awards go through an idempotent upsert so concurrent
// evaluations never double-award.
type BadgeService struct {
	Badges     ports.BadgeRepository
	Stats      ports.StatsSource
	Activities ports.ActivityLog
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Evaluate runs every rule whose badge the user does not own yet and
// returns the newly-awarded slugs.
func (s BadgeService) Evaluate(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	catalog, err := s.Badges.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]ports.Badge, len(catalog))
	for _, badge := range catalog {
		bySlug[badge.Slug] = badge
	}

	owned, err := s.ownedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	awarded := make([]string, 0)
	for _, rule := range badgerules.All() {
		badge, inCatalog := bySlug[rule.Slug()]
		if !inCatalog || owned[badge.BadgeID] {
			continue
		}
		if !rule.Satisfied(snapshot) {
			continue
		}
		created, err := s.Badges.AwardBadge(ctx, ports.UserBadge{
			UserID:   userID,
			BadgeID:  badge.BadgeID,
			EarnedAt: now,
		})
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		awarded = append(awarded, badge.Slug)
		ResolveLogger(s.Logger).Info("badge earned",
			"event", "gamification_badge_earned",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"badge_slug", badge.Slug,
			"rarity", string(badge.Rarity),
		)
		s.appendActivity(ctx, userID, badge, now)
	}
	return awarded, nil
}

// Grant is the administrative award path and the only way reserved badges
// (founder) are ever earned.
func (s BadgeService) Grant(ctx context.Context, userID string, slug string) (bool, error) {
	userID = strings.TrimSpace(userID)
	slug = strings.TrimSpace(slug)
	if userID == "" || slug == "" {
		return false, domainerrors.ErrInvalidInput
	}

	catalog, err := s.Badges.ListBadges(ctx)
	if err != nil {
		return false, err
	}
	var badge ports.Badge
	found := false
	for _, item := range catalog {
		if item.Slug == slug {
			badge = item
			found = true
			break
		}
	}
	if !found {
		return false, domainerrors.ErrBadgeNotFound
	}

	now := s.Clock.Now().UTC()
	created, err := s.Badges.AwardBadge(ctx, ports.UserBadge{
		UserID:   userID,
		BadgeID:  badge.BadgeID,
		EarnedAt: now,
	})
	if err != nil {
		return false, err
	}
	if created {
		s.appendActivity(ctx, userID, badge, now)
	}
	return created, nil
}

// ListOwned returns the user's badges joined with their catalog entries.
func (s BadgeService) ListOwned(ctx context.Context, userID string) ([]OwnedBadge, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	catalog, err := s.Badges.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ports.Badge, len(catalog))
	for _, badge := range catalog {
		byID[badge.BadgeID] = badge
	}
	userBadges, err := s.Badges.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]OwnedBadge, 0, len(userBadges))
	for _, userBadge := range userBadges {
		items = append(items, OwnedBadge{
			Badge:        byID[userBadge.BadgeID],
			EarnedAt:     userBadge.EarnedAt,
			IsDisplayed:  userBadge.IsDisplayed,
			DisplayOrder: userBadge.DisplayOrder,
		})
	}
	return items, nil
}

type OwnedBadge struct {
	Badge        ports.Badge
	EarnedAt     time.Time
	IsDisplayed  bool
	DisplayOrder int
}

// SetDisplayed marks an owned badge as displayed, enforcing the shelf cap.
// Order defaults to one past the current displayed count.
func (s BadgeService) SetDisplayed(ctx context.Context, userID string, badgeID string, order int) error {
	userID = strings.TrimSpace(userID)
	badgeID = strings.TrimSpace(badgeID)
	if userID == "" || badgeID == "" {
		return domainerrors.ErrInvalidInput
	}

	userBadges, err := s.Badges.ListUserBadges(ctx, userID)
	if err != nil {
		return err
	}
	var target *ports.UserBadge
	displayedCount := 0
	for i := range userBadges {
		if userBadges[i].BadgeID == badgeID {
			target = &userBadges[i]
		}
		if userBadges[i].IsDisplayed {
			displayedCount++
		}
	}
	if target == nil {
		return domainerrors.ErrBadgeNotOwned
	}
	if !target.IsDisplayed && displayedCount >= MaxDisplayedBadges {
		return domainerrors.ErrDisplayCapReached
	}
	if order <= 0 {
		order = displayedCount + 1
		if target.IsDisplayed {
			order = target.DisplayOrder
		}
	}
	return s.Badges.UpdateBadgeDisplay(ctx, userID, badgeID, true, order)
}

// RemoveDisplay clears the display flag. Not displayed is a no-op.
func (s BadgeService) RemoveDisplay(ctx context.Context, userID string, badgeID string) error {
	userID = strings.TrimSpace(userID)
	badgeID = strings.TrimSpace(badgeID)
	if userID == "" || badgeID == "" {
		return domainerrors.ErrInvalidInput
	}

	userBadges, err := s.Badges.ListUserBadges(ctx, userID)
	if err != nil {
		return err
	}
	for _, userBadge := range userBadges {
		if userBadge.BadgeID != badgeID {
			continue
		}
		if !userBadge.IsDisplayed {
			return nil
		}
		return s.Badges.UpdateBadgeDisplay(ctx, userID, badgeID, false, 0)
	}
	return domainerrors.ErrBadgeNotOwned
}

func (s BadgeService) ownedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	userBadges, err := s.Badges.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(userBadges))
	for _, userBadge := range userBadges {
		owned[userBadge.BadgeID] = true
	}
	return owned, nil
}

func (s BadgeService) appendActivity(ctx context.Context, userID string, badge ports.Badge, at time.Time) {
	if s.Activities == nil {
		return
	}
	activityID, err := s.IDGen.NewID(ctx)
	if err == nil {
		err = s.Activities.AppendActivity(ctx, ports.Activity{
			ActivityID: activityID,
			UserID:     userID,
			Type:       "BADGE_EARNED",
			Data: map[string]any{
				"badge_id": badge.BadgeID,
				"slug":     badge.Slug,
				"rarity":   string(badge.Rarity),
			},
			CreatedAt: at,
		})
	}
	if err != nil {
		ResolveLogger(s.Logger).Warn("badge activity write failed",
			"event", "gamification_activity_write_failed",
			"module", "learning-experience/gamification-service",
			"layer", "application",
			"user_id", userID,
			"badge_slug", badge.Slug,
			"error", err.Error(),
		)
	}
}
