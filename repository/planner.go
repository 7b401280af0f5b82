package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type AreaRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Area, error)
	GetByID(ctx context.Context, id string) (*domain.Area, error)
	Create(ctx context.Context, area *domain.Area) error
	Update(ctx context.Context, area *domain.Area) error
	// Delete removes the area together with its projects and their tasks.
	Delete(ctx context.Context, id string) error
}

type ProjectRepository interface {
	ListByArea(ctx context.Context, areaID string) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	// Delete removes the project together with its tasks.
	Delete(ctx context.Context, id string) error
}
