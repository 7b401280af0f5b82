package gamification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase"
)

// Upper bounds for client-supplied amounts.
const (
	MaxBonusXP      = 1000
	MaxFocusSeconds = 24 * 60 * 60
	MaxGrantXP      = 10000
)

var validate = validator.New()

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	MissionLockTTL time.Duration
	// MissionWait bounds how long a caller waits for a concurrent weekly
	// generation before giving up with ErrBusy.
	MissionWait time.Duration
	Now         func() time.Time
}

// Engine applies progression events. Every event runs as one unit of work so
// the subject row and the user's progression change together or not at all.
type Engine struct {
	uow       repository.UnitOfWork
	repos     repository.Repositories
	suggester usecase.Suggester
	locker    repository.Locker
	logger    *zap.Logger
	lockTTL   time.Duration
	waitFor   time.Duration
	now       func() time.Time
}

func New(
	uow repository.UnitOfWork,
	repos repository.Repositories,
	suggester usecase.Suggester,
	locker repository.Locker,
	logger *zap.Logger,
	cfg Config,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MissionLockTTL <= 0 {
		cfg.MissionLockTTL = 2 * time.Minute
	}
	if cfg.MissionWait <= 0 {
		cfg.MissionWait = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		uow:       uow,
		repos:     repos,
		suggester: suggester,
		locker:    locker,
		logger:    logger,
		lockTTL:   cfg.MissionLockTTL,
		waitFor:   cfg.MissionWait,
		now:       cfg.Now,
	}
}

// CompleteTaskInput carries the optional extras of a completion toggle.
type CompleteTaskInput struct {
	Completed    bool `json:"completed"`
	FocusSeconds int  `json:"focus_seconds,omitempty" validate:"min=0,max=86400"`
	BonusXP      int  `json:"bonus_xp,omitempty" validate:"min=0,max=1000"`
}

type grantInput struct {
	Amount  int    `validate:"min=1,max=10000"`
	SkillID string `validate:"max=64"`
}

// Outcome reports the state after a progression event.
type Outcome struct {
	User         *domain.User          `json:"user"`
	Task         *domain.Task          `json:"task,omitempty"`
	Mission      *domain.WeeklyMission `json:"mission,omitempty"`
	Skill        *domain.Skill         `json:"skill,omitempty"`
	XPDelta      int                   `json:"xp_delta"`
	TokensDelta  int                   `json:"tokens_delta"`
	LevelUp      bool                  `json:"level_up"`
	Level        int                   `json:"level"`
	SkillLevelUp bool                  `json:"skill_level_up,omitempty"`
}

// CompleteTask toggles a task and moves the user's XP by the task reward.
//
// Completing grants xp+bonus and the task's tokens and adds focus time.
// Reopening removes only the base xp; tokens, bonus XP and any level gained stay.
func (e *Engine) CompleteTask(ctx context.Context, userID, taskID string, in CompleteTaskInput) (*Outcome, error) {
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid completion", err)
	}

	var out *Outcome
	err := e.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		task, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != userID {
			return domain.ErrTaskNotFound
		}
		if task.Completed == in.Completed {
			return domain.ErrAlreadyInState
		}

		user, err := repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		var xpDelta, tokensDelta int
		kind := domain.EventTaskReopened
		task.Completed = in.Completed
		if in.Completed {
			kind = domain.EventTaskCompleted
			task.FocusSeconds += in.FocusSeconds
			task.BonusXP = in.BonusXP
			task.CompletedAt = &now
			xpDelta = task.XP + in.BonusXP
			tokensDelta = task.Tokens
		} else {
			task.CompletedAt = nil
			xpDelta = -task.XP
		}

		out, err = e.applyToUser(ctx, repos, user, kind, task.ID, xpDelta, tokensDelta)
		if err != nil {
			return err
		}
		if task.SkillID != nil {
			skill, levelUp, err := e.applyToSkill(ctx, repos, userID, *task.SkillID, xpDelta, false)
			if err != nil {
				return err
			}
			out.Skill = skill
			out.SkillLevelUp = levelUp
		}
		if err := repos.Tasks.Update(ctx, task); err != nil {
			return err
		}
		out.Task = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logEvent("task completion toggled", userID, out, zap.String("task_id", taskID), zap.Bool("completed", in.Completed))
	return out, nil
}

// CompleteWeeklyMission toggles a mission. Completion grants the mission's
// tokens and XP; reopening keeps them.
func (e *Engine) CompleteWeeklyMission(ctx context.Context, userID, missionID string, completed bool) (*Outcome, error) {
	var out *Outcome
	err := e.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		mission, err := repos.Missions.GetForUpdate(ctx, missionID)
		if err != nil {
			return err
		}
		if mission.UserID != userID {
			return domain.ErrMissionNotFound
		}
		if mission.Completed == completed {
			return domain.ErrAlreadyInState
		}

		user, err := repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		mission.Completed = completed
		kind := domain.EventMissionReopened
		var xpDelta, tokensDelta int
		if completed {
			now := e.now().UTC()
			mission.CompletedAt = &now
			kind = domain.EventMissionCompleted
			xpDelta, tokensDelta = mission.XP, mission.Tokens
		} else {
			mission.CompletedAt = nil
		}

		out, err = e.applyToUser(ctx, repos, user, kind, mission.ID, xpDelta, tokensDelta)
		if err != nil {
			return err
		}
		if err := repos.Missions.Update(ctx, mission); err != nil {
			return err
		}
		out.Mission = mission
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logEvent("mission completion toggled", userID, out, zap.String("mission_id", missionID), zap.Bool("completed", completed))
	return out, nil
}

// GrantXP credits XP directly, for example as a focus-session bonus. Tokens are
// untouched. A non-empty skillID receives the same amount as skill points.
func (e *Engine) GrantXP(ctx context.Context, userID string, amount int, skillID string) (*Outcome, error) {
	if err := validate.Struct(grantInput{Amount: amount, SkillID: skillID}); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid xp grant", err)
	}

	var out *Outcome
	err := e.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		out, err = e.applyToUser(ctx, repos, user, domain.EventXPGranted, skillID, amount, 0)
		if err != nil {
			return err
		}
		if skillID != "" {
			skill, levelUp, err := e.applyToSkill(ctx, repos, userID, skillID, amount, true)
			if err != nil {
				return err
			}
			out.Skill = skill
			out.SkillLevelUp = levelUp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logEvent("xp granted", userID, out)
	return out, nil
}

func (e *Engine) applyToUser(
	ctx context.Context,
	repos repository.Repositories,
	user *domain.User,
	kind domain.EventKind,
	subjectID string,
	xpDelta, tokensDelta int,
) (*Outcome, error) {
	before := user.Progress()
	after := domain.ApplyXPDelta(before, xpDelta)
	user.SetProgress(after)
	user.AddTokens(tokensDelta)

	if err := repos.Users.UpdateProgress(ctx, user); err != nil {
		return nil, err
	}
	if err := repos.Events.Append(ctx, domain.ProgressEvent{
		UserID:      user.ID,
		Kind:        kind,
		SubjectID:   subjectID,
		XPDelta:     xpDelta,
		TokensDelta: tokensDelta,
		LevelBefore: before.Level,
		LevelAfter:  after.Level,
		CreatedAt:   e.now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &Outcome{
		User:        user,
		XPDelta:     xpDelta,
		TokensDelta: tokensDelta,
		LevelUp:     before.LeveledUp(after),
		Level:       after.Level,
	}, nil
}

// applyToSkill moves a skill's points. Direct grants require a leaf skill; a
// task keeps crediting its skill even if sub-skills were added after assignment.
func (e *Engine) applyToSkill(
	ctx context.Context,
	repos repository.Repositories,
	userID, skillID string,
	delta int,
	requireLeaf bool,
) (*domain.Skill, bool, error) {
	skill, err := repos.Skills.GetForUpdate(ctx, skillID)
	if err != nil {
		return nil, false, err
	}
	if skill.UserID != userID {
		return nil, false, domain.ErrSkillNotFound
	}
	if requireLeaf {
		hasChildren, err := repos.Skills.HasChildren(ctx, skillID)
		if err != nil {
			return nil, false, err
		}
		if hasChildren {
			return nil, false, domain.ErrSkillNotSelectable
		}
	}
	before := skill.Progress()
	after := domain.ApplyXPDelta(before, delta)
	skill.SetProgress(after)
	if err := repos.Skills.UpdateProgress(ctx, skill); err != nil {
		return nil, false, err
	}
	return skill, before.LeveledUp(after), nil
}

func (e *Engine) logEvent(msg, userID string, out *Outcome, fields ...zap.Field) {
	fields = append(fields,
		zap.String("user_id", userID),
		zap.Int("xp_delta", out.XPDelta),
		zap.Int("tokens_delta", out.TokensDelta),
		zap.Int("level", out.Level),
		zap.Bool("level_up", out.LevelUp),
	)
	e.logger.Info(msg, fields...)
}
