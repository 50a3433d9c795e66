// Package badgerules defines the automatic badge award conditions.
// Each rule is a named variant evaluated through the Rule interface;
// badges without a rule (founder) are only ever granted manually.
package badgerules

import (
	"aralify/contexts/learning-experience/gamification-service/domain/stats"
)

// Rule decides whether a user has earned the badge with the matching slug.
type Rule interface {
	Slug() string
	Satisfied(snapshot stats.Snapshot) bool
}

// All returns the evaluation order for automatic badge awards.
func All() []Rule {
	return []Rule{
		marathonerRule{},
		nightOwlRule{},
		dedicatedRule{},
		speedsterRule{},
		polyglotRule{},
		conversationalistRule{},
		grandmasterRule{},
	}
}

// ReservedSlugs lists catalog badges that no rule will ever award.
func ReservedSlugs() []string {
	return []string{"founder"}
}

// marathonerRule: five or more lessons completed today.
type marathonerRule struct{}

func (marathonerRule) Slug() string { return "marathoner" }

func (marathonerRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.LessonsCompletedToday >= 5
}

// nightOwlRule: a lesson completed between midnight and 05:00 UTC.
type nightOwlRule struct{}

func (nightOwlRule) Slug() string { return "night-owl" }

func (nightOwlRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.CompletionsInHourRange(0, 5) > 0
}

// dedicatedRule: ten lessons completed overall.
type dedicatedRule struct{}

func (dedicatedRule) Slug() string { return "dedicated" }

func (dedicatedRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.LessonsCompleted >= 10
}

// speedsterRule: a lesson finished within 300 seconds of starting it.
type speedsterRule struct{}

func (speedsterRule) Slug() string { return "speedster" }

func (speedsterRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.FastestCompletionSeconds > 0 && snapshot.FastestCompletionSeconds <= 300
}

// polyglotRule: lessons completed in three distinct languages.
type polyglotRule struct{}

func (polyglotRule) Slug() string { return "polyglot" }

func (polyglotRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.DistinctLanguages >= 3
}

// conversationalistRule: ten comments posted.
type conversationalistRule struct{}

func (conversationalistRule) Slug() string { return "conversationalist" }

func (conversationalistRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.CommentsPosted >= 10
}

// grandmasterRule: level 50 reached.
type grandmasterRule struct{}

func (grandmasterRule) Slug() string { return "grandmaster" }

func (grandmasterRule) Satisfied(snapshot stats.Snapshot) bool {
	return snapshot.Level >= 50
}
