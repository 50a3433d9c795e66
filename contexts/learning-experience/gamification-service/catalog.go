package gamificationservice

import (
	"aralify/contexts/learning-experience/gamification-service/domain/criteria"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

// DefaultAchievements is the built-in achievement catalog. Production
// deployments load the catalog from the database; the defaults seed the
// in-memory runtime and local development.
func DefaultAchievements() []ports.Achievement {
	return []ports.Achievement{
		{
			AchievementID: "ach-first-lesson",
			Slug:          "first-lesson",
			Title:         "First Steps",
			Description:   "Complete your first lesson",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 1},
			XPReward:      25,
		},
		{
			AchievementID: "ach-ten-lessons",
			Slug:          "ten-lessons",
			Title:         "Getting Serious",
			Description:   "Complete 10 lessons",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 10},
			XPReward:      50,
		},
		{
			AchievementID: "ach-fifty-lessons",
			Slug:          "fifty-lessons",
			Title:         "Half Century",
			Description:   "Complete 50 lessons",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 50},
			XPReward:      150,
		},
		{
			AchievementID: "ach-hundred-lessons",
			Slug:          "hundred-lessons",
			Title:         "Centurion",
			Description:   "Complete 100 lessons",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonCount, Count: 100},
			XPReward:      300,
		},
		{
			AchievementID: "ach-hard-mode",
			Slug:          "hard-mode",
			Title:         "Hard Mode",
			Description:   "Complete 10 advanced lessons",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLessonDifficulty, Difficulty: "advanced", Count: 10},
			XPReward:      100,
		},
		{
			AchievementID: "ach-course-starter",
			Slug:          "course-starter",
			Title:         "Enrolled",
			Description:   "Start your first course",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindCourseStarted, Count: 1},
			XPReward:      10,
		},
		{
			AchievementID: "ach-course-finisher",
			Slug:          "course-finisher",
			Title:         "Course Graduate",
			Description:   "Complete a full course",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindCourseComplete, Count: 1},
			XPReward:      200,
		},
		{
			AchievementID: "ach-week-streak",
			Slug:          "week-streak",
			Title:         "Week Warrior",
			Description:   "Reach a 7-day streak",
			Category:      "consistency",
			Criteria:      criteria.Criteria{Kind: criteria.KindStreak, Days: 7},
			XPReward:      75,
		},
		{
			AchievementID: "ach-month-streak",
			Slug:          "month-streak",
			Title:         "Monthly Devotion",
			Description:   "Reach a 30-day streak",
			Category:      "consistency",
			Criteria:      criteria.Criteria{Kind: criteria.KindStreak, Days: 30},
			XPReward:      250,
		},
		{
			AchievementID: "ach-level-ten",
			Slug:          "level-ten",
			Title:         "Double Digits",
			Description:   "Reach level 10",
			Category:      "progression",
			Criteria:      criteria.Criteria{Kind: criteria.KindLevel, Level: 10},
			XPReward:      100,
		},
		{
			AchievementID: "ach-xp-collector",
			Slug:          "xp-collector",
			Title:         "XP Collector",
			Description:   "Accumulate 10000 XP",
			Category:      "progression",
			Criteria:      criteria.Criteria{Kind: criteria.KindXPTotal, Amount: 10000},
			XPReward:      150,
		},
		{
			AchievementID: "ach-social-butterfly",
			Slug:          "social-butterfly",
			Title:         "Social Butterfly",
			Description:   "Post 25 comments",
			Category:      "community",
			Criteria:      criteria.Criteria{Kind: criteria.KindSocial, Action: criteria.SocialComment, Count: 25},
			XPReward:      50,
		},
		{
			AchievementID: "ach-early-bird",
			Slug:          "early-bird",
			Title:         "Early Bird",
			Description:   "Complete a lesson between 5am and 8am",
			Category:      "hidden",
			Criteria:      criteria.Criteria{Kind: criteria.KindTimeOfDay, HourStart: 5, HourEnd: 8},
			XPReward:      40,
			IsSecret:      true,
		},
		{
			AchievementID: "ach-lightning",
			Slug:          "lightning",
			Title:         "Lightning Fast",
			Description:   "Finish a lesson in under two minutes",
			Category:      "hidden",
			Criteria:      criteria.Criteria{Kind: criteria.KindFastCompletion, MaxSeconds: 120},
			XPReward:      40,
			IsSecret:      true,
		},
		{
			AchievementID: "ach-polyglot-path",
			Slug:          "polyglot-path",
			Title:         "Polyglot Path",
			Description:   "Learn in 3 different programming languages",
			Category:      "learning",
			Criteria:      criteria.Criteria{Kind: criteria.KindLanguageCount, Count: 3},
			XPReward:      120,
		},
	}
}

// DefaultBadges carries every slug the automatic rules know plus the
// reserved founder badge, which is only ever granted through the admin
// path.
func DefaultBadges() []ports.Badge {
	return []ports.Badge{
		{
			BadgeID:     "badge-marathoner",
			Slug:        "marathoner",
			Title:       "Marathoner",
			Description: "Completed 5 lessons in a single day",
			Rarity:      ports.RarityRare,
		},
		{
			BadgeID:     "badge-night-owl",
			Slug:        "night-owl",
			Title:       "Night Owl",
			Description: "Completed a lesson between midnight and 5am",
			Rarity:      ports.RarityUncommon,
		},
		{
			BadgeID:     "badge-dedicated",
			Slug:        "dedicated",
			Title:       "Dedicated",
			Description: "Completed 10 lessons",
			Rarity:      ports.RarityCommon,
		},
		{
			BadgeID:     "badge-speedster",
			Slug:        "speedster",
			Title:       "Speedster",
			Description: "Finished a lesson in under five minutes",
			Rarity:      ports.RarityUncommon,
		},
		{
			BadgeID:     "badge-polyglot",
			Slug:        "polyglot",
			Title:       "Polyglot",
			Description: "Learned in three or more languages",
			Rarity:      ports.RarityRare,
		},
		{
			BadgeID:     "badge-conversationalist",
			Slug:        "conversationalist",
			Title:       "Conversationalist",
			Description: "Posted 10 comments",
			Rarity:      ports.RarityCommon,
		},
		{
			BadgeID:     "badge-grandmaster",
			Slug:        "grandmaster",
			Title:       "Grandmaster",
			Description: "Reached level 50",
			Rarity:      ports.RarityEpic,
		},
		{
			BadgeID:     "badge-founder",
			Slug:        "founder",
			Title:       "Founder",
			Description: "Joined during the founding period",
			Rarity:      ports.RarityLegendary,
		},
	}
}
