package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase"
)

// WeekMissions is the mission set of one ISO week.
type WeekMissions struct {
	WeekID    string                 `json:"week_id"`
	Missions  []domain.WeeklyMission `json:"missions"`
	Generated bool                   `json:"generated"`
}

const missionPollInterval = 100 * time.Millisecond

// MaybeGenerateWeeklyMissions returns the current week's missions, asking the
// suggestion service for a fresh set only when none exist yet. A week is
// generated at most once per user: concurrent callers are serialized by the
// locker and the insert re-checks the week inside the transaction. A caller
// that finds the lock taken waits for the holder's missions.
func (e *Engine) MaybeGenerateWeeklyMissions(ctx context.Context, userID string) (*WeekMissions, error) {
	weekID := domain.WeekIdentifier(e.now())

	existing, err := e.repos.Missions.ListByWeek(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &WeekMissions{WeekID: weekID, Missions: existing}, nil
	}

	if e.locker != nil {
		release, current, err := e.lockWeek(ctx, userID, weekID)
		if err != nil {
			return nil, err
		}
		if len(current) > 0 {
			return &WeekMissions{WeekID: weekID, Missions: current}, nil
		}
		defer release()

		existing, err = e.repos.Missions.ListByWeek(ctx, userID, weekID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return &WeekMissions{WeekID: weekID, Missions: existing}, nil
		}
	}

	req, err := e.missionRequest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e.suggester == nil {
		return nil, domain.ErrSuggestionFailed
	}
	drafts, err := e.suggester.SuggestWeeklyMissions(ctx, req)
	if err != nil {
		e.logger.Warn("weekly mission suggestion failed", zap.String("user_id", userID), zap.Error(err))
		return nil, usecase.SuggestionError(err)
	}
	if len(drafts) != domain.MissionsPerWeek {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message,
			fmt.Errorf("expected %d missions, got %d", domain.MissionsPerWeek, len(drafts)))
	}

	missions := make([]domain.WeeklyMission, 0, len(drafts))
	for i, d := range drafts {
		missions = append(missions, domain.WeeklyMission{
			UserID:      userID,
			WeekID:      weekID,
			Position:    i + 1,
			Title:       d.Title,
			Description: d.Description,
			XP:          d.XP,
			Tokens:      d.Tokens,
		})
	}

	result := &WeekMissions{WeekID: weekID}
	err = e.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Missions.ListByWeek(ctx, userID, weekID)
		if err != nil {
			return err
		}
		if len(current) > 0 {
			result.Missions = current
			return nil
		}
		if err := repos.Missions.CreateBatch(ctx, missions); err != nil {
			return err
		}
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := repos.Events.Append(ctx, domain.ProgressEvent{
			UserID:      userID,
			Kind:        domain.EventMissionsGenerated,
			SubjectID:   weekID,
			LevelBefore: user.Level,
			LevelAfter:  user.Level,
			CreatedAt:   e.now().UTC(),
		}); err != nil {
			return err
		}
		result.Missions = missions
		result.Generated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Generated {
		e.logger.Info("weekly missions generated", zap.String("user_id", userID), zap.String("week_id", weekID))
	}
	return result, nil
}

// lockWeek takes the generation lock of a week. While another caller holds it,
// lockWeek polls until that caller's missions are stored, the lock is free
// again or the wait runs out. Missions found while waiting are returned
// instead of a release func.
func (e *Engine) lockWeek(ctx context.Context, userID, weekID string) (func(), []domain.WeeklyMission, error) {
	key := fmt.Sprintf("missions:%s:%s", userID, weekID)

	timeout := time.NewTimer(e.waitFor)
	defer timeout.Stop()
	ticker := time.NewTicker(missionPollInterval)
	defer ticker.Stop()

	for {
		release, err := e.locker.Acquire(ctx, key, e.lockTTL)
		if err == nil {
			return release, nil, nil
		}
		if !errors.Is(err, domain.ErrBusy) {
			return nil, nil, err
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-timeout.C:
			return nil, nil, domain.ErrBusy
		case <-ticker.C:
		}

		existing, err := e.repos.Missions.ListByWeek(ctx, userID, weekID)
		if err != nil {
			return nil, nil, err
		}
		if len(existing) > 0 {
			return nil, existing, nil
		}
	}
}

func (e *Engine) missionRequest(ctx context.Context, userID string) (usecase.MissionRequest, error) {
	user, err := e.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return usecase.MissionRequest{}, err
	}
	rows, err := e.repos.Skills.ListByUser(ctx, userID)
	if err != nil {
		return usecase.MissionRequest{}, err
	}
	req := usecase.MissionRequest{Level: user.Level}
	for _, s := range rows {
		req.Skills = append(req.Skills, usecase.SkillSummary{Name: s.Name, Level: s.Level})
	}
	return req, nil
}
