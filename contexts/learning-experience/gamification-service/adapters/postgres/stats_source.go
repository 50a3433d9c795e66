package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"aralify/contexts/learning-experience/gamification-service/domain/stats"
	"aralify/contexts/learning-experience/gamification-service/ports"

	"gorm.io/gorm"
)

// UserStats reads the aggregate stats projection maintained by the
// learning and community services, then overlays the live gamification
// counters so level, XP, and streak criteria never lag the state row.
// A missing projection row yields a zero snapshot, not an error.
func (r *Repository) UserStats(ctx context.Context, userID string) (stats.Snapshot, error) {
	userID = strings.TrimSpace(userID)

	var row userStatsModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return stats.Snapshot{}, r.logError("gamification_repo_user_stats_failed", err, "user_id", userID)
	}

	snapshot, err := row.toSnapshot(userID)
	if err != nil {
		return stats.Snapshot{}, r.logError("gamification_repo_decode_user_stats_failed", err, "user_id", userID)
	}

	var state userStateModel
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&state).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snapshot, nil
		}
		return stats.Snapshot{}, r.logError("gamification_repo_user_stats_failed", err, "user_id", userID)
	}
	snapshot.XPTotal = state.XPTotal
	snapshot.Level = state.Level
	snapshot.StreakCurrent = state.StreakCurrent
	snapshot.StreakLongest = state.StreakLongest
	return snapshot, nil
}

type userStatsModel struct {
	UserID                   string `gorm:"column:user_id;primaryKey"`
	LessonsCompleted         int    `gorm:"column:lessons_completed"`
	LessonsCompletedToday    int    `gorm:"column:lessons_completed_today"`
	LessonsByDifficulty      []byte `gorm:"column:lessons_by_difficulty"`
	CoursesStarted           int    `gorm:"column:courses_started"`
	CoursesCompleted         int    `gorm:"column:courses_completed"`
	DistinctLanguages        int    `gorm:"column:distinct_languages"`
	CommentsPosted           int    `gorm:"column:comments_posted"`
	Followers                int    `gorm:"column:followers"`
	Following                int    `gorm:"column:following"`
	CompletionsByHour        []byte `gorm:"column:completions_by_hour"`
	FastestCompletionSeconds int    `gorm:"column:fastest_completion_seconds"`
}

func (userStatsModel) TableName() string {
	return "gamification_user_stats"
}

func (m userStatsModel) toSnapshot(userID string) (stats.Snapshot, error) {
	snapshot := stats.Snapshot{
		UserID:                   userID,
		LessonsCompleted:         m.LessonsCompleted,
		LessonsCompletedToday:    m.LessonsCompletedToday,
		CoursesStarted:           m.CoursesStarted,
		CoursesCompleted:         m.CoursesCompleted,
		DistinctLanguages:        m.DistinctLanguages,
		CommentsPosted:           m.CommentsPosted,
		Followers:                m.Followers,
		Following:                m.Following,
		FastestCompletionSeconds: m.FastestCompletionSeconds,
	}
	if len(m.LessonsByDifficulty) > 0 {
		if err := json.Unmarshal(m.LessonsByDifficulty, &snapshot.LessonsByDifficulty); err != nil {
			return stats.Snapshot{}, err
		}
	}
	if len(m.CompletionsByHour) > 0 {
		var hours []int
		if err := json.Unmarshal(m.CompletionsByHour, &hours); err != nil {
			return stats.Snapshot{}, err
		}
		for i := 0; i < len(hours) && i < len(snapshot.CompletionsByHour); i++ {
			snapshot.CompletionsByHour[i] = hours[i]
		}
	}
	return snapshot, nil
}

var _ ports.StatsSource = (*Repository)(nil)
