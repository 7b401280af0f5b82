package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetForUpdate locks the progression row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdateProgress(ctx context.Context, user *domain.User) error
}
