package leveling

import "math"

// MaxLevel bounds the level search. The curve makes levels beyond this
// unreachable for any realistic XP total.
const MaxLevel = 999

// XPForLevel returns the total XP required to reach a level.
// Level 1 is the floor of the curve and costs nothing.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// LevelFromXP returns the largest level whose XP requirement is covered
// by the given total.
func LevelFromXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	for level < MaxLevel && XPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

// Rank is one row of the rank-title threshold table.
type Rank struct {
	MinLevel int
	Title    string
}

// Ranks is ordered by ascending MinLevel. RankTitle picks the highest
// threshold at or below the level.
var Ranks = []Rank{
	{MinLevel: 1, Title: "Novice"},
	{MinLevel: 5, Title: "Apprentice"},
	{MinLevel: 10, Title: "Journeyman"},
	{MinLevel: 20, Title: "Adept"},
	{MinLevel: 30, Title: "Expert"},
	{MinLevel: 40, Title: "Veteran"},
	{MinLevel: 50, Title: "Master"},
	{MinLevel: 75, Title: "Grandmaster"},
	{MinLevel: 100, Title: "Legend"},
}

func RankTitle(level int) string {
	title := Ranks[0].Title
	for _, rank := range Ranks {
		if level < rank.MinLevel {
			break
		}
		title = rank.Title
	}
	return title
}

// Progress describes position within the current level band.
type Progress struct {
	CurrentLevel    int
	CurrentLevelXP  int
	NextLevelXP     int
	ProgressXP      int
	ProgressPercent float64
}

func ProgressForXP(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelFromXP(totalXP)
	currentLevelXP := XPForLevel(level)
	nextLevelXP := XPForLevel(level + 1)

	progress := Progress{
		CurrentLevel:   level,
		CurrentLevelXP: currentLevelXP,
		NextLevelXP:    nextLevelXP,
		ProgressXP:     totalXP - currentLevelXP,
	}
	span := nextLevelXP - currentLevelXP
	if span <= 0 {
		progress.ProgressPercent = 100
		return progress
	}
	percent := float64(progress.ProgressXP) / float64(span) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress.ProgressPercent = percent
	return progress
}
