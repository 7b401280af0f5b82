package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase"
)

var validate = validator.New()

type UseCase struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	skills    repository.SkillRepository
	suggester usecase.Suggester
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	skills repository.SkillRepository,
	suggester usecase.Suggester,
	buffer usecase.OperationBuffer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		projects:  projects,
		skills:    skills,
		suggester: suggester,
		buffer:    buffer,
		logger:    logger,
	}
}

// CreateInput is the user-supplied part of a new task. XP and tokens come from
// the suggestion service.
type CreateInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	ProjectID   string     `json:"project_id" validate:"max=64"`
	SkillID     string     `json:"skill_id" validate:"max=64"`
	DueDate     *time.Time `json:"due_date"`
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// CreateTask asks the suggestion service for the XP reward and stores the
// task. If the suggestion fails nothing is created.
func (uc *UseCase) CreateTask(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid task", err)
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
	}

	var projectName string
	if in.ProjectID != "" {
		project, err := uc.ownedProject(ctx, userID, in.ProjectID)
		if err != nil {
			return nil, err
		}
		projectName = project.Name
		task.ProjectID = &project.ID
	}
	if in.SkillID != "" {
		if err := uc.checkSelectable(ctx, userID, in.SkillID); err != nil {
			return nil, err
		}
		task.SkillID = &in.SkillID
	}

	if uc.suggester == nil {
		return nil, domain.ErrSuggestionFailed
	}
	xp, err := uc.suggester.SuggestTaskXP(ctx, usecase.TaskXPRequest{Title: task.Title, Project: projectName})
	if err != nil {
		uc.logger.Warn("task xp suggestion failed", zap.String("user_id", userID), zap.Error(err))
		return nil, usecase.SuggestionError(err)
	}
	task.XP = xp
	task.Tokens = domain.TokensForXP(xp)

	return uc.tasks.Create(ctx, task)
}

// UpdateTask applies a typed patch. Completion, focus time and bonus XP are
// not patchable; they change only through progression events.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty patch")
	}
	if err := validate.Struct(patch); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid patch", err)
	}

	task, err := uc.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task.Completed && patch.ChangesReward() {
		return nil, domain.ErrRewardLocked
	}
	if patch.ProjectID != nil && *patch.ProjectID != "" {
		if _, err := uc.ownedProject(ctx, userID, *patch.ProjectID); err != nil {
			return nil, err
		}
	}
	if patch.SkillID != nil && *patch.SkillID != "" {
		if err := uc.checkSelectable(ctx, userID, *patch.SkillID); err != nil {
			return nil, err
		}
	}
	patch.Apply(task)

	// The row may have been completed since it was read; the store re-checks
	// the reward lock and keeps its own completion state.
	if err := uc.tasks.UpdateDetails(ctx, task, patch.ChangesReward()); err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationUpdate, task) {
			return task, nil
		}
		return nil, err
	}
	return task, nil
}

// DuplicateTask stores an open copy of the task with the same reward.
func (uc *UseCase) DuplicateTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return uc.tasks.Create(ctx, task.Duplicate())
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	task, err := uc.GetTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) ownedProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

func (uc *UseCase) checkSelectable(ctx context.Context, userID, skillID string) error {
	skill, err := uc.skills.GetByID(ctx, skillID)
	if err != nil {
		return err
	}
	if skill.UserID != userID {
		return domain.ErrSkillNotFound
	}
	hasChildren, err := uc.skills.HasChildren(ctx, skillID)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrSkillNotSelectable
	}
	return nil
}

// shouldBuffer parks the operation in the offline buffer when the failure came
// from the datastore rather than from the request itself.
func (uc *UseCase) shouldBuffer(ctx context.Context, cause error, operation string, task *domain.Task) bool {
	var dErr *domain.Error
	if uc.buffer == nil || errors.As(cause, &dErr) {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.Error(cause))
	return true
}
