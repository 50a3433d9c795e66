package streakcal

import (
	"testing"
	"time"
)

func TestDayKeyIsUTC(t *testing.T) {
	locLate := time.FixedZone("UTC+13", 13*3600)
	local := time.Date(2026, 3, 2, 1, 30, 0, 0, locLate)
	if got := DayKey(local); got != "2026-03-01" {
		t.Fatalf("expected UTC day 2026-03-01, got %s", got)
	}
	utc := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	if got := DayKey(utc); got != "2026-03-01" {
		t.Fatalf("expected 2026-03-01, got %s", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		last string
		next string
		want GapKind
	}{
		{"2026-03-01", "2026-03-01", GapSameDay},
		{"2026-03-01", "2026-03-02", GapNextDay},
		{"2026-03-01", "2026-03-03", GapOneMissedDay},
		{"2026-03-01", "2026-03-04", GapBroken},
		{"2026-02-28", "2026-03-01", GapNextDay},
		{"bogus", "2026-03-01", GapBroken},
	}
	for _, tc := range cases {
		if got := Classify(tc.last, tc.next); got != tc.want {
			t.Fatalf("Classify(%s, %s) expected %v, got %v", tc.last, tc.next, tc.want, got)
		}
	}
}

func TestMilestoneBonus(t *testing.T) {
	cases := []struct {
		days  int
		bonus int
		ok    bool
	}{
		{3, 25, true},
		{7, 50, true},
		{14, 100, true},
		{30, 200, true},
		{60, 400, true},
		{100, 750, true},
		{1, 0, false},
		{8, 0, false},
	}
	for _, tc := range cases {
		bonus, ok := MilestoneBonus(tc.days)
		if ok != tc.ok || bonus != tc.bonus {
			t.Fatalf("MilestoneBonus(%d) = (%d, %v), expected (%d, %v)", tc.days, bonus, ok, tc.bonus, tc.ok)
		}
	}
}

func TestNextMilestone(t *testing.T) {
	milestone, ok := NextMilestone(0)
	if !ok || milestone.Days != 3 {
		t.Fatalf("expected next milestone 3 from zero, got %+v ok=%v", milestone, ok)
	}
	milestone, ok = NextMilestone(7)
	if !ok || milestone.Days != 14 {
		t.Fatalf("expected next milestone 14 after 7, got %+v ok=%v", milestone, ok)
	}
	if _, ok := NextMilestone(100); ok {
		t.Fatalf("expected no milestone past the table")
	}
}
