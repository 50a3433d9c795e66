package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CompleteLessonRequest struct {
	UserID     string `json:"user_id"`
	LessonID   string `json:"lesson_id"`
	XPEarned   int    `json:"xp_earned"`
	Difficulty string `json:"difficulty,omitempty"`
	Title      string `json:"title,omitempty"`
}

type CompleteQuizRequest struct {
	UserID   string `json:"user_id"`
	QuizID   string `json:"quiz_id"`
	XPEarned int    `json:"xp_earned"`
	Score    int    `json:"score,omitempty"`
}

type CompleteChallengeRequest struct {
	UserID      string `json:"user_id"`
	ChallengeID string `json:"challenge_id"`
	XPEarned    int    `json:"xp_earned"`
}

type XPAwardDTO struct {
	XPAwarded     int    `json:"xp_awarded"`
	NewTotal      int    `json:"new_total"`
	LevelUp       bool   `json:"level_up"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	RankTitle     string `json:"rank_title"`
}

type StreakUpdateDTO struct {
	StreakUpdated    bool `json:"streak_updated"`
	CurrentStreak    int  `json:"current_streak"`
	LongestStreak    int  `json:"longest_streak"`
	FreezeConsumed   bool `json:"freeze_consumed"`
	FreezeEarned     bool `json:"freeze_earned"`
	FreezesAvailable int  `json:"freezes_available"`
	MilestoneReached int  `json:"milestone_reached,omitempty"`
	MilestoneBonusXP int  `json:"milestone_bonus_xp,omitempty"`
}

type UnlockedAchievementDTO struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	XPAwarded int    `json:"xp_awarded"`
}

type CompletionResponse struct {
	Status string `json:"status"`
	Data   struct {
		XP              XPAwardDTO               `json:"xp"`
		Streak          StreakUpdateDTO          `json:"streak"`
		NewAchievements []UnlockedAchievementDTO `json:"new_achievements"`
		NewBadges       []string                 `json:"new_badges"`
	} `json:"data"`
}

type ClaimDailyBonusRequest struct {
	UserID string `json:"user_id"`
}

type ClaimDailyBonusResponse struct {
	Status string `json:"status"`
	Data   struct {
		Success        bool   `json:"success"`
		AlreadyClaimed bool   `json:"already_claimed"`
		XPEarned       int    `json:"xp_earned"`
		Streak         int    `json:"streak"`
		NextClaimDay   string `json:"next_claim_day"`
	} `json:"data"`
}

type StreakInfoResponse struct {
	Status string `json:"status"`
	Data   struct {
		CurrentStreak    int  `json:"current_streak"`
		LongestStreak    int  `json:"longest_streak"`
		FreezesAvailable int  `json:"freezes_available"`
		IsStreakActive   bool `json:"is_streak_active"`
		StreakAtRisk     bool `json:"streak_at_risk"`
		NextMilestone    int  `json:"next_milestone,omitempty"`
		DaysRemaining    int  `json:"days_remaining,omitempty"`
		CanClaimBonus    bool `json:"can_claim_bonus"`
	} `json:"data"`
}

type LevelProgressDTO struct {
	CurrentLevel    int     `json:"current_level"`
	CurrentLevelXP  int     `json:"current_level_xp"`
	NextLevelXP     int     `json:"next_level_xp"`
	ProgressXP      int     `json:"progress_xp"`
	ProgressPercent float64 `json:"progress_percent"`
}

type OwnedBadgeDTO struct {
	BadgeID      string `json:"badge_id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Rarity       string `json:"rarity"`
	IconURL      string `json:"icon_url,omitempty"`
	EarnedAt     string `json:"earned_at"`
	IsDisplayed  bool   `json:"is_displayed"`
	DisplayOrder int    `json:"display_order"`
}

type ProfileResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID               string           `json:"user_id"`
		XPTotal              int              `json:"xp_total"`
		Level                int              `json:"level"`
		RankTitle            string           `json:"rank_title"`
		LevelProgress        LevelProgressDTO `json:"level_progress"`
		CurrentStreak        int              `json:"current_streak"`
		LongestStreak        int              `json:"longest_streak"`
		AchievementsTotal    int              `json:"achievements_total"`
		AchievementsUnlocked int              `json:"achievements_unlocked"`
		DisplayedBadges      []OwnedBadgeDTO  `json:"displayed_badges"`
	} `json:"data"`
}

type RankDTO struct {
	MinLevel int    `json:"min_level"`
	Title    string `json:"title"`
}

type LevelThresholdDTO struct {
	Level      int `json:"level"`
	XPRequired int `json:"xp_required"`
}

type LevelSystemResponse struct {
	Status string `json:"status"`
	Data   struct {
		Formula    string              `json:"formula"`
		MaxLevel   int                 `json:"max_level"`
		Ranks      []RankDTO           `json:"ranks"`
		Milestones []LevelThresholdDTO `json:"milestones"`
	} `json:"data"`
}

type LeaderboardEntryDTO struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"user_id"`
	XPTotal int    `json:"xp_total"`
	Level   int    `json:"level"`
}

type LeaderboardResponse struct {
	Status string                `json:"status"`
	Data   []LeaderboardEntryDTO `json:"data"`
}

type AchievementDTO struct {
	AchievementID string  `json:"achievement_id"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category,omitempty"`
	XPReward      int     `json:"xp_reward"`
	IsSecret      bool    `json:"is_secret"`
	IsUnlocked    bool    `json:"is_unlocked"`
	CurrentValue  int     `json:"current_value"`
	TargetValue   int     `json:"target_value"`
	Progress      float64 `json:"progress"`
}

type AchievementListResponse struct {
	Status string           `json:"status"`
	Data   []AchievementDTO `json:"data"`
}

type BadgeListResponse struct {
	Status string          `json:"status"`
	Data   []OwnedBadgeDTO `json:"data"`
}

type SetBadgeDisplayRequest struct {
	Displayed bool `json:"displayed"`
	Order     int  `json:"order,omitempty"`
}

type SetBadgeDisplayResponse struct {
	Status string `json:"status"`
}

type GrantBadgeRequest struct {
	UserID string `json:"user_id"`
	Slug   string `json:"slug"`
}

type GrantBadgeResponse struct {
	Status string `json:"status"`
	Data   struct {
		Granted bool   `json:"granted"`
		Slug    string `json:"slug"`
	} `json:"data"`
}

type XPTransactionDTO struct {
	TransactionID string `json:"transaction_id"`
	Amount        int    `json:"amount"`
	Source        string `json:"source"`
	SourceID      string `json:"source_id,omitempty"`
	Description   string `json:"description,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type XPTransactionListResponse struct {
	Status string             `json:"status"`
	Data   []XPTransactionDTO `json:"data"`
}
