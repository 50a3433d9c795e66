package gamificationservice

import (
	"log/slog"

	httpadapter "aralify/contexts/learning-experience/gamification-service/adapters/http"
	"aralify/contexts/learning-experience/gamification-service/adapters/memory"
	"aralify/contexts/learning-experience/gamification-service/application"
	"aralify/contexts/learning-experience/gamification-service/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	Orchestrator application.Orchestrator
	Store        *memory.Store
}

type Dependencies struct {
	Users        ports.UserStateRepository
	Streaks      ports.StreakRepository
	Achievements ports.AchievementRepository
	Badges       ports.BadgeRepository
	Activities   ports.ActivityLog
	Stats        ports.StatsSource
	Cache        ports.LeaderboardCache
	Events       ports.EventPublisher
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	xp := application.XPService{
		Users:      deps.Users,
		Activities: deps.Activities,
		Events:     deps.Events,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	streaks := application.StreakService{
		Users:      deps.Users,
		Streaks:    deps.Streaks,
		Activities: deps.Activities,
		XP:         xp,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	achievements := application.AchievementService{
		Achievements: deps.Achievements,
		Stats:        deps.Stats,
		Activities:   deps.Activities,
		XP:           xp,
		Clock:        deps.Clock,
		IDGen:        deps.IDGenerator,
		Logger:       deps.Logger,
	}
	badges := application.BadgeService{
		Badges:     deps.Badges,
		Stats:      deps.Stats,
		Activities: deps.Activities,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	orchestrator := application.Orchestrator{
		Users:        deps.Users,
		Activities:   deps.Activities,
		Cache:        deps.Cache,
		XP:           xp,
		Streaks:      streaks,
		Achievements: achievements,
		Badges:       badges,
		Clock:        deps.Clock,
		IDGen:        deps.IDGenerator,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Orchestrator: orchestrator,
			Logger:       deps.Logger,
		},
		Orchestrator: orchestrator,
	}
}

// NewInMemoryModule wires the module against the in-memory store with the
// default achievement and badge catalogs seeded. Used by tests and the
// local no-database runtime.
func NewInMemoryModule(events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	store.SeedAchievements(DefaultAchievements())
	store.SeedBadges(DefaultBadges())
	module := NewModule(Dependencies{
		Users:        store,
		Streaks:      store,
		Achievements: store,
		Badges:       store,
		Activities:   store,
		Stats:        store,
		Events:       events,
		Clock:        store,
		IDGenerator:  store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
