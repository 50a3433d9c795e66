package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("gamification input is invalid")
	ErrUserNotFound        = errors.New("gamification user state not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrBadgeNotFound       = errors.New("badge not found")
	ErrBadgeNotOwned       = errors.New("badge is not owned by the user")
	ErrDisplayCapReached   = errors.New("badge display cap reached")
	ErrInvariantViolation  = errors.New("gamification state invariant violated")
)
