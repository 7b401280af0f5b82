package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type EventRepository interface {
	Append(ctx context.Context, event domain.ProgressEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProgressEvent, error)
}
