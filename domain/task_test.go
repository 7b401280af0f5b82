package domain

import (
	"testing"
	"time"
)

func TestDifficultyForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want Difficulty
	}{
		{10, DifficultyEasy},
		{40, DifficultyEasy},
		{41, DifficultyMedium},
		{80, DifficultyMedium},
		{81, DifficultyHard},
		{120, DifficultyHard},
		{121, DifficultyVeryHard},
		{150, DifficultyVeryHard},
	}
	for _, tt := range tests {
		if got := DifficultyForXP(tt.xp); got != tt.want {
			t.Errorf("DifficultyForXP(%d) = %q, want %q", tt.xp, got, tt.want)
		}
	}
}

func TestTokensForXP(t *testing.T) {
	tests := map[int]int{0: 0, -5: 0, 9: 0, 10: 1, 75: 7, 150: 15}
	for xp, want := range tests {
		if got := TokensForXP(xp); got != want {
			t.Errorf("TokensForXP(%d) = %d, want %d", xp, got, want)
		}
	}
}

func TestTaskPatchApply(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{Title: "old", ProjectID: ptr("p1"), DueDate: &due, XP: 40}

	TaskPatch{Title: ptr("new"), ProjectID: ptr(""), ClearDue: true}.Apply(task)

	if task.Title != "new" {
		t.Fatalf("title = %q", task.Title)
	}
	if task.ProjectID != nil {
		t.Fatalf("project should be detached, got %v", *task.ProjectID)
	}
	if task.DueDate != nil {
		t.Fatal("due date should be cleared")
	}
	if task.XP != 40 {
		t.Fatalf("xp changed to %d", task.XP)
	}
}

func TestTaskPatchFlags(t *testing.T) {
	tests := []struct {
		name   string
		patch  TaskPatch
		empty  bool
		reward bool
	}{
		{"empty", TaskPatch{}, true, false},
		{"title", TaskPatch{Title: ptr("x")}, false, false},
		{"clear due", TaskPatch{ClearDue: true}, false, false},
		{"xp", TaskPatch{XP: ptr(10)}, false, true},
		{"tokens", TaskPatch{Tokens: ptr(0)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.IsEmpty(); got != tt.empty {
				t.Fatalf("IsEmpty = %v", got)
			}
			if got := tt.patch.ChangesReward(); got != tt.reward {
				t.Fatalf("ChangesReward = %v", got)
			}
		})
	}
}

func TestTaskDuplicate(t *testing.T) {
	done := time.Now()
	src := &Task{ID: "t1", Title: "x", Completed: true, CompletedAt: &done, FocusSeconds: 60, BonusXP: 25, XP: 50, Links: []string{"https://a"}}
	dup := src.Duplicate()

	if dup.ID != "" || dup.Completed || dup.CompletedAt != nil || dup.FocusSeconds != 0 || dup.BonusXP != 0 {
		t.Fatalf("duplicate kept state: %+v", dup)
	}
	if dup.XP != 50 || dup.Title != "x" {
		t.Fatalf("duplicate lost content: %+v", dup)
	}
	dup.Links[0] = "changed"
	if src.Links[0] != "https://a" {
		t.Fatal("links are shared")
	}
}

func TestWeekIdentifier(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W53"},
		{time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), "2026-W43"},
	}
	for _, tt := range tests {
		if got := WeekIdentifier(tt.at); got != tt.want {
			t.Errorf("WeekIdentifier(%s) = %s, want %s", tt.at.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestSessionIsExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.IsExpired(now) {
		t.Fatal("session expired early")
	}
	if !s.IsExpired(now.Add(time.Minute)) {
		t.Fatal("session must expire at ExpiresAt")
	}
	var nilSession *Session
	if !nilSession.IsExpired(now) {
		t.Fatal("nil session must be expired")
	}
}

func TestErrorIs(t *testing.T) {
	wrapped := WrapError(ErrCodeNotFound, ErrTaskNotFound.Message, ErrTaskNotFound)
	if !IsDomainError(wrapped, ErrCodeNotFound) {
		t.Fatal("code lost")
	}
	if ErrTokenExpired.Is(ErrUnauthorized) {
		t.Fatal("distinct sentinels must not match")
	}
}
