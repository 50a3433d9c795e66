// Package gamificationservice contains the Aralify gamification engine:
// XP and leveling, daily streaks, achievements, and badges.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package gamificationservice
