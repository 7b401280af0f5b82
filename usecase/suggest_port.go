package usecase

import (
	"context"
	"errors"

	"github.com/fastygo/questify/domain"
)

// TaskXPRequest describes a task the suggestion service should price in XP.
type TaskXPRequest struct {
	Title   string
	Project string
}

// SkillSummary is the part of a skill the suggestion service sees.
type SkillSummary struct {
	Name  string
	Level int
}

// MissionRequest is the context used to propose a week of missions.
type MissionRequest struct {
	Level  int
	Skills []SkillSummary
}

// Suggester abstracts the generative-AI collaborator. Implementations return
// values already checked against the documented ranges.
type Suggester interface {
	SuggestTaskXP(ctx context.Context, req TaskXPRequest) (int, error)
	SuggestWeeklyMissions(ctx context.Context, req MissionRequest) ([]domain.MissionDraft, error)
}

// SuggestionError keeps domain errors raised by the collaborator and
// classifies anything else as a recoverable outage.
func SuggestionError(err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, err)
}
