package badgerules

import (
	"testing"

	"aralify/contexts/learning-experience/gamification-service/domain/stats"
)

func ruleBySlug(t *testing.T, slug string) Rule {
	t.Helper()
	for _, rule := range All() {
		if rule.Slug() == slug {
			return rule
		}
	}
	t.Fatalf("no rule registered for slug %q", slug)
	return nil
}

func TestMarathonerRule(t *testing.T) {
	rule := ruleBySlug(t, "marathoner")
	if rule.Satisfied(stats.Snapshot{LessonsCompletedToday: 4}) {
		t.Fatalf("4 lessons today must not satisfy")
	}
	if !rule.Satisfied(stats.Snapshot{LessonsCompletedToday: 5}) {
		t.Fatalf("5 lessons today must satisfy")
	}
}

func TestNightOwlRule(t *testing.T) {
	rule := ruleBySlug(t, "night-owl")

	var midday stats.Snapshot
	midday.CompletionsByHour[13] = 3
	if rule.Satisfied(midday) {
		t.Fatalf("midday completions must not satisfy")
	}

	var night stats.Snapshot
	night.CompletionsByHour[2] = 1
	if !rule.Satisfied(night) {
		t.Fatalf("a 2am completion must satisfy")
	}
}

func TestSpeedsterRule(t *testing.T) {
	rule := ruleBySlug(t, "speedster")
	if rule.Satisfied(stats.Snapshot{}) {
		t.Fatalf("no recorded completion must not satisfy")
	}
	if rule.Satisfied(stats.Snapshot{FastestCompletionSeconds: 400}) {
		t.Fatalf("400s must not satisfy")
	}
	if !rule.Satisfied(stats.Snapshot{FastestCompletionSeconds: 299}) {
		t.Fatalf("299s must satisfy")
	}
}

func TestRemainingRules(t *testing.T) {
	if !ruleBySlug(t, "dedicated").Satisfied(stats.Snapshot{LessonsCompleted: 10}) {
		t.Fatalf("10 lessons must satisfy dedicated")
	}
	if !ruleBySlug(t, "polyglot").Satisfied(stats.Snapshot{DistinctLanguages: 3}) {
		t.Fatalf("3 languages must satisfy polyglot")
	}
	if !ruleBySlug(t, "conversationalist").Satisfied(stats.Snapshot{CommentsPosted: 10}) {
		t.Fatalf("10 comments must satisfy conversationalist")
	}
	if ruleBySlug(t, "grandmaster").Satisfied(stats.Snapshot{Level: 49}) {
		t.Fatalf("level 49 must not satisfy grandmaster")
	}
	if !ruleBySlug(t, "grandmaster").Satisfied(stats.Snapshot{Level: 50}) {
		t.Fatalf("level 50 must satisfy grandmaster")
	}
}

func TestFounderIsReservedNotRuleDriven(t *testing.T) {
	for _, rule := range All() {
		if rule.Slug() == "founder" {
			t.Fatalf("founder must never be awarded by a rule")
		}
	}
	reserved := ReservedSlugs()
	if len(reserved) != 1 || reserved[0] != "founder" {
		t.Fatalf("unexpected reserved slugs: %v", reserved)
	}
}
