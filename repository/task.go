package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type TaskFilter struct {
	UserID    string
	ProjectID string
	Completed *bool
	Limit     int
	Offset    int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// UpdateDetails writes the user-editable columns only. Completion, focus
	// time and bonus XP are left to progression events and read back into
	// task. With withReward set, xp and tokens are written too, but only while
	// the task is still open; otherwise ErrRewardLocked is returned.
	UpdateDetails(ctx context.Context, task *domain.Task, withReward bool) error
	Delete(ctx context.Context, id string) error
}
