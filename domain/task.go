package domain

import "time"

// Difficulty is the display tier derived from a task's XP reward.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyVeryHard Difficulty = "Very Hard"
)

// DifficultyForXP maps an XP reward onto its difficulty tier.
func DifficultyForXP(xp int) Difficulty {
	switch {
	case xp <= 40:
		return DifficultyEasy
	case xp <= 80:
		return DifficultyMedium
	case xp <= 120:
		return DifficultyHard
	default:
		return DifficultyVeryHard
	}
}

// Task represents a user-owned unit of work carrying a reward.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ProjectID    *string    `json:"project_id,omitempty"`
	SkillID      *string    `json:"skill_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Markdown     string     `json:"markdown,omitempty"`
	Links        []string   `json:"links,omitempty"`
	Completed    bool       `json:"completed"`
	XP           int        `json:"xp"`
	BonusXP      int        `json:"bonus_xp,omitempty"`
	Tokens       int        `json:"tokens"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	FocusSeconds int        `json:"focus_seconds"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Difficulty returns the tier derived from the task's XP.
func (t *Task) Difficulty() Difficulty {
	if t == nil {
		return DifficultyEasy
	}
	return DifficultyForXP(t.XP)
}

// TokensForXP is the default token reward granted alongside an XP reward.
func TokensForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	return xp / 10
}

// Duplicate returns an open copy of the task without identity or focus history.
func (t *Task) Duplicate() *Task {
	if t == nil {
		return nil
	}
	dup := *t
	dup.ID = ""
	dup.Completed = false
	dup.CompletedAt = nil
	dup.FocusSeconds = 0
	dup.BonusXP = 0
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	if t.Links != nil {
		dup.Links = append([]string(nil), t.Links...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		dup.DueDate = &due
	}
	return &dup
}

// TaskPatch lists the task fields a caller may change. Nil fields are left untouched.
// Completion, bonus XP and focus time change only through progression events.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=10000"`
	Markdown    *string    `json:"markdown,omitempty" validate:"omitempty,max=50000"`
	Links       *[]string  `json:"links,omitempty" validate:"omitempty,dive,url"`
	XP          *int       `json:"xp,omitempty" validate:"omitempty,min=0,max=1000"`
	Tokens      *int       `json:"tokens,omitempty" validate:"omitempty,min=0"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ClearDue    bool       `json:"clear_due_date,omitempty"`
	ProjectID   *string    `json:"project_id,omitempty" validate:"omitempty,max=64"`
	SkillID     *string    `json:"skill_id,omitempty" validate:"omitempty,max=64"`
}

// ChangesReward reports whether the patch touches the task's XP or tokens.
func (p TaskPatch) ChangesReward() bool {
	return p.XP != nil || p.Tokens != nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Notes == nil && p.Markdown == nil &&
		p.Links == nil && p.XP == nil && p.Tokens == nil &&
		p.DueDate == nil && !p.ClearDue && p.ProjectID == nil && p.SkillID == nil
}

// Apply writes the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Markdown != nil {
		t.Markdown = *p.Markdown
	}
	if p.Links != nil {
		t.Links = append([]string(nil), (*p.Links)...)
	}
	if p.XP != nil {
		t.XP = *p.XP
	}
	if p.Tokens != nil {
		t.Tokens = *p.Tokens
	}
	if p.ClearDue {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ProjectID != nil {
		t.ProjectID = optionalID(*p.ProjectID)
	}
	if p.SkillID != nil {
		t.SkillID = optionalID(*p.SkillID)
	}
}

// optionalID maps the empty string to nil so a patch can detach a reference.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
