package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type SkillRepository interface {
	// ListByUser returns flat rows ordered by creation time.
	ListByUser(ctx context.Context, userID string) ([]domain.Skill, error)
	GetByID(ctx context.Context, id string) (*domain.Skill, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Skill, error)
	HasChildren(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, skill *domain.Skill) error
	UpdateProgress(ctx context.Context, skill *domain.Skill) error
}
