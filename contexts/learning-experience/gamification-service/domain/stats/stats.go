// Package stats defines the aggregate user snapshot that achievement
// criteria and badge rules evaluate against.
package stats

// Snapshot is a point-in-time aggregate of a user's learning activity.
// Counters come from the platform's progress projections; gamification
// fields mirror the user's current state row.
type Snapshot struct {
	UserID string

	LessonsCompleted      int
	LessonsCompletedToday int
	LessonsByDifficulty   map[string]int
	CoursesStarted        int
	CoursesCompleted      int
	DistinctLanguages     int

	CommentsPosted int
	Followers      int
	Following      int

	// CompletionsByHour counts lesson completions per UTC hour of day.
	CompletionsByHour [24]int

	// FastestCompletionSeconds is the quickest start-to-finish lesson
	// completion on record. Zero means no timed completion exists.
	FastestCompletionSeconds int

	XPTotal       int
	Level         int
	StreakCurrent int
	StreakLongest int
}

// LessonsWithDifficulty returns the completion count for one difficulty tier.
func (s Snapshot) LessonsWithDifficulty(difficulty string) int {
	if s.LessonsByDifficulty == nil {
		return 0
	}
	return s.LessonsByDifficulty[difficulty]
}

// CompletionsInHourRange sums completions over the half-open hour window
// [hourStart, hourEnd). A window whose start is after its end wraps past
// midnight; start == end is an empty window and counts nothing.
func (s Snapshot) CompletionsInHourRange(hourStart, hourEnd int) int {
	if hourStart < 0 || hourStart > 23 || hourEnd < 0 || hourEnd > 24 {
		return 0
	}
	total := 0
	for hour := hourStart; hour != hourEnd%24; hour = (hour + 1) % 24 {
		total += s.CompletionsByHour[hour]
	}
	return total
}
