// Package criteria models achievement unlock conditions as a tagged union
// and evaluates them against an aggregate user snapshot.
package criteria

import (
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
)

type Kind string

const (
	KindLessonCount      Kind = "lesson_count"
	KindLessonDifficulty Kind = "lesson_difficulty"
	KindStreak           Kind = "streak"
	KindCourseComplete   Kind = "course_complete"
	KindCourseStarted    Kind = "course_started"
	KindSocial           Kind = "social"
	KindLevel            Kind = "level"
	KindXPTotal          Kind = "xp_total"
	KindTimeOfDay        Kind = "time_of_day"
	KindFastCompletion   Kind = "fast_completion"
	KindLanguageCount    Kind = "language_count"
)

type SocialAction string

const (
	SocialComment   SocialAction = "comment"
	SocialFollower  SocialAction = "follower"
	SocialFollowing SocialAction = "following"
)

// Criteria is the typed predicate attached to a catalog achievement.
// Kind selects which of the remaining fields are meaningful.
type Criteria struct {
	Kind       Kind         `json:"type"`
	Count      int          `json:"count,omitempty"`
	Difficulty string       `json:"difficulty,omitempty"`
	Days       int          `json:"days,omitempty"`
	Action     SocialAction `json:"action,omitempty"`
	Level      int          `json:"level,omitempty"`
	Amount     int          `json:"amount,omitempty"`
	HourStart  int          `json:"hour_start,omitempty"`
	HourEnd    int          `json:"hour_end,omitempty"`
	MaxSeconds int          `json:"max_seconds,omitempty"`
}

// Progress is the evaluation outcome of one criteria against one snapshot.
type Progress struct {
	CurrentValue int
	TargetValue  int
	Percent      float64
	Met          bool
}

// Evaluate maps the criteria to a (current, target) pair from the snapshot.
// Unknown kinds evaluate as never met with a zero target.
func Evaluate(c Criteria, snapshot stats.Snapshot) Progress {
	current, target := values(c, snapshot)
	progress := Progress{
		CurrentValue: current,
		TargetValue:  target,
	}
	if target <= 0 {
		return progress
	}
	progress.Met = current >= target
	percent := float64(current) / float64(target) * 100
	if percent > 100 {
		percent = 100
	}
	progress.Percent = percent
	return progress
}

func values(c Criteria, snapshot stats.Snapshot) (current int, target int) {
	switch c.Kind {
	case KindLessonCount:
		return snapshot.LessonsCompleted, c.Count
	case KindLessonDifficulty:
		return snapshot.LessonsWithDifficulty(c.Difficulty), c.Count
	case KindStreak:
		return snapshot.StreakLongest, c.Days
	case KindCourseComplete:
		return snapshot.CoursesCompleted, c.Count
	case KindCourseStarted:
		return snapshot.CoursesStarted, c.Count
	case KindSocial:
		return socialValue(c.Action, snapshot), c.Count
	case KindLevel:
		return snapshot.Level, c.Level
	case KindXPTotal:
		return snapshot.XPTotal, c.Amount
	case KindTimeOfDay:
		return snapshot.CompletionsInHourRange(c.HourStart, c.HourEnd), 1
	case KindFastCompletion:
		if snapshot.FastestCompletionSeconds > 0 && snapshot.FastestCompletionSeconds <= c.MaxSeconds {
			return 1, 1
		}
		return 0, 1
	case KindLanguageCount:
		return snapshot.DistinctLanguages, c.Count
	default:
		return 0, 0
	}
}

func socialValue(action SocialAction, snapshot stats.Snapshot) int {
	switch action {
	case SocialComment:
		return snapshot.CommentsPosted
	case SocialFollower:
		return snapshot.Followers
	case SocialFollowing:
		return snapshot.Following
	default:
		return 0
	}
}
