package repository

import (
	"context"

	"github.com/fastygo/questify/domain"
)

type MissionRepository interface {
	ListByWeek(ctx context.Context, userID, weekID string) ([]domain.WeeklyMission, error)
	GetForUpdate(ctx context.Context, id string) (*domain.WeeklyMission, error)
	CreateBatch(ctx context.Context, missions []domain.WeeklyMission) error
	Update(ctx context.Context, mission *domain.WeeklyMission) error
}
