package criteria

import (
	"encoding/json"
	"testing"

	"aralify/contexts/learning-experience/gamification-service/domain/stats"
)

func TestEvaluateLessonCount(t *testing.T) {
	snapshot := stats.Snapshot{LessonsCompleted: 7}

	progress := Evaluate(Criteria{Kind: KindLessonCount, Count: 10}, snapshot)
	if progress.Met {
		t.Fatalf("7 of 10 lessons must not satisfy")
	}
	if progress.CurrentValue != 7 || progress.TargetValue != 10 {
		t.Fatalf("unexpected progress values: %+v", progress)
	}
	if progress.Percent != 70 {
		t.Fatalf("expected 70%%, got %f", progress.Percent)
	}

	progress = Evaluate(Criteria{Kind: KindLessonCount, Count: 5}, snapshot)
	if !progress.Met || progress.Percent != 100 {
		t.Fatalf("7 of 5 lessons must satisfy at 100%%: %+v", progress)
	}
}

func TestEvaluateStreakUsesLongest(t *testing.T) {
	snapshot := stats.Snapshot{StreakCurrent: 2, StreakLongest: 9}
	progress := Evaluate(Criteria{Kind: KindStreak, Days: 7}, snapshot)
	if !progress.Met {
		t.Fatalf("longest streak of 9 must satisfy a 7-day criteria")
	}
}

func TestEvaluateLevelAndXP(t *testing.T) {
	snapshot := stats.Snapshot{Level: 12, XPTotal: 4200}
	if !Evaluate(Criteria{Kind: KindLevel, Level: 10}, snapshot).Met {
		t.Fatalf("level 12 must satisfy level 10")
	}
	if Evaluate(Criteria{Kind: KindXPTotal, Amount: 5000}, snapshot).Met {
		t.Fatalf("4200 xp must not satisfy 5000")
	}
}

func TestEvaluateSocialActions(t *testing.T) {
	snapshot := stats.Snapshot{CommentsPosted: 30, Followers: 2, Following: 11}
	if !Evaluate(Criteria{Kind: KindSocial, Action: SocialComment, Count: 25}, snapshot).Met {
		t.Fatalf("30 comments must satisfy 25")
	}
	if Evaluate(Criteria{Kind: KindSocial, Action: SocialFollower, Count: 5}, snapshot).Met {
		t.Fatalf("2 followers must not satisfy 5")
	}
	if Evaluate(Criteria{Kind: KindSocial, Action: "unknown", Count: 1}, snapshot).Met {
		t.Fatalf("unknown social action must never satisfy")
	}
}

func TestEvaluateTimeOfDayWrapsMidnight(t *testing.T) {
	var snapshot stats.Snapshot
	snapshot.CompletionsByHour[23] = 1

	if !Evaluate(Criteria{Kind: KindTimeOfDay, HourStart: 22, HourEnd: 2}, snapshot).Met {
		t.Fatalf("completion at 23h must satisfy the 22-02 window")
	}
	if Evaluate(Criteria{Kind: KindTimeOfDay, HourStart: 0, HourEnd: 5}, snapshot).Met {
		t.Fatalf("completion at 23h must not satisfy the 00-05 window")
	}
}

func TestEvaluateFastCompletion(t *testing.T) {
	if Evaluate(Criteria{Kind: KindFastCompletion, MaxSeconds: 120}, stats.Snapshot{}).Met {
		t.Fatalf("no recorded completion must not satisfy")
	}
	fast := stats.Snapshot{FastestCompletionSeconds: 90}
	if !Evaluate(Criteria{Kind: KindFastCompletion, MaxSeconds: 120}, fast).Met {
		t.Fatalf("90s must satisfy a 120s bound")
	}
	slow := stats.Snapshot{FastestCompletionSeconds: 180}
	if Evaluate(Criteria{Kind: KindFastCompletion, MaxSeconds: 120}, slow).Met {
		t.Fatalf("180s must not satisfy a 120s bound")
	}
}

func TestEvaluateUnknownKindNeverMet(t *testing.T) {
	progress := Evaluate(Criteria{Kind: "mystery", Count: 1}, stats.Snapshot{LessonsCompleted: 99})
	if progress.Met || progress.TargetValue != 0 {
		t.Fatalf("unknown kind must evaluate as never met: %+v", progress)
	}
}

func TestCriteriaJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"lesson_difficulty","difficulty":"advanced","count":10}`)
	var parsed Criteria
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed.Kind != KindLessonDifficulty || parsed.Difficulty != "advanced" || parsed.Count != 10 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
}
