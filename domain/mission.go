package domain

import (
	"fmt"
	"time"
)

// MissionsPerWeek is the number of missions generated for a calendar week.
const MissionsPerWeek = 7

// WeeklyMission is an AI-generated objective scoped to one ISO week.
type WeeklyMission struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	WeekID      string     `json:"week_id"`
	Position    int        `json:"position"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	XP          int        `json:"xp"`
	Tokens      int        `json:"tokens"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MissionDraft is a mission proposed by the suggestion service, before it is stored.
type MissionDraft struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	XP          int    `json:"xp" validate:"min=50,max=300"`
	Tokens      int    `json:"tokens" validate:"min=10,max=100"`
}

// WeekIdentifier returns the ISO year and week of t formatted as "2006-W01".
func WeekIdentifier(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
