// Package streakcal holds the calendar math behind the streak state machine.
// All day boundaries are UTC; a "day key" is the UTC date formatted as
// 2006-01-02 and is the deduplication key for streak history.
package streakcal

import "time"

const dayKeyLayout = "2006-01-02"

// DailyBonusBase is the flat XP paid on a daily claim before milestone bonuses.
const DailyBonusBase = 10

// FreezeEarnInterval grants one streak freeze every Nth consecutive day.
const FreezeEarnInterval = 7

// MaxFreezes caps banked streak freezes. The interval grant is skipped
// once the cap is reached.
const MaxFreezes = 5

func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, key, time.UTC)
}

// DaysBetween returns the whole calendar days from one day key to another.
// Malformed keys count as an unbridgeable gap.
func DaysBetween(fromKey, toKey string) int {
	from, err := ParseDayKey(fromKey)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	to, err := ParseDayKey(toKey)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return int(to.Sub(from).Hours() / 24)
}

// GapKind classifies the distance between the last credited day and today.
type GapKind int

const (
	// GapSameDay means today is already credited.
	GapSameDay GapKind = iota
	// GapNextDay means the streak extends normally.
	GapNextDay
	// GapOneMissedDay means exactly one day was skipped and a freeze can bridge it.
	GapOneMissedDay
	// GapBroken means the streak cannot continue.
	GapBroken
)

func Classify(lastDayKey, todayKey string) GapKind {
	switch DaysBetween(lastDayKey, todayKey) {
	case 0:
		return GapSameDay
	case 1:
		return GapNextDay
	case 2:
		return GapOneMissedDay
	default:
		return GapBroken
	}
}

// Milestone is a streak length that pays a one-time XP bonus when reached.
type Milestone struct {
	Days    int
	BonusXP int
}

// Milestones is ordered by ascending day count.
var Milestones = []Milestone{
	{Days: 3, BonusXP: 25},
	{Days: 7, BonusXP: 50},
	{Days: 14, BonusXP: 100},
	{Days: 30, BonusXP: 200},
	{Days: 60, BonusXP: 400},
	{Days: 100, BonusXP: 750},
}

// MilestoneBonus returns the bonus for an exact streak length.
func MilestoneBonus(days int) (int, bool) {
	for _, milestone := range Milestones {
		if milestone.Days == days {
			return milestone.BonusXP, true
		}
	}
	return 0, false
}

// NextMilestone returns the smallest milestone above the current streak.
func NextMilestone(currentStreak int) (Milestone, bool) {
	for _, milestone := range Milestones {
		if milestone.Days > currentStreak {
			return milestone, true
		}
	}
	return Milestone{}, false
}
