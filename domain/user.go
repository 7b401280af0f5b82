package domain

import "time"

// Starting progression for freshly registered users.
const (
	StartingLevel       = 1
	StartingNextLevelXP = 1000
)

// User represents an authenticated identity together with its progression profile.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Level        int       `json:"level"`
	XP           int       `json:"xp"`
	NextLevelXP  int       `json:"next_level_xp"`
	Tokens       int       `json:"tokens"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a user at the starting progression.
func NewUser(email, name string) *User {
	return &User{
		Email:       email,
		Name:        name,
		Level:       StartingLevel,
		NextLevelXP: StartingNextLevelXP,
	}
}

// Progress extracts the leveling state of the user.
func (u *User) Progress() Progress {
	if u == nil {
		return Progress{}
	}
	return Progress{Level: u.Level, XP: u.XP, NextLevelXP: u.NextLevelXP}
}

// SetProgress writes back a leveling state computed by ApplyXPDelta.
func (u *User) SetProgress(p Progress) {
	if u == nil {
		return
	}
	u.Level = p.Level
	u.XP = p.XP
	u.NextLevelXP = p.NextLevelXP
}

// AddTokens credits spendable tokens. Tokens never drop below zero.
func (u *User) AddTokens(amount int) {
	if u == nil {
		return
	}
	u.Tokens += amount
	if u.Tokens < 0 {
		u.Tokens = 0
	}
}
