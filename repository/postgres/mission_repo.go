package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

const missionColumns = `id, user_id, week_id, position, title, description, xp, tokens, completed, completed_at, created_at`

type missionRepository struct {
	db querier
}

// NewMissionRepository returns a Postgres-backed MissionRepository.
func NewMissionRepository(pool *pgxpool.Pool) repository.MissionRepository {
	return &missionRepository{db: pool}
}

func (r *missionRepository) ListByWeek(ctx context.Context, userID, weekID string) ([]domain.WeeklyMission, error) {
	rows, err := r.db.Query(ctx, `
	SELECT `+missionColumns+`
	FROM weekly_missions
	WHERE user_id = $1 AND week_id = $2
	ORDER BY position`, userID, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []domain.WeeklyMission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, *mission)
	}
	return missions, rows.Err()
}

func (r *missionRepository) GetForUpdate(ctx context.Context, id string) (*domain.WeeklyMission, error) {
	return scanMission(r.db.QueryRow(ctx, `SELECT `+missionColumns+` FROM weekly_missions WHERE id = $1 FOR UPDATE`, id))
}

// CreateBatch inserts the whole week in one round trip. A duplicate
// (user, week, position) fails the batch with a conflict.
func (r *missionRepository) CreateBatch(ctx context.Context, missions []domain.WeeklyMission) error {
	if len(missions) == 0 {
		return nil
	}
	const query = `
	INSERT INTO weekly_missions (id, user_id, week_id, position, title, description, xp, tokens, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at
	`
	batch := &pgx.Batch{}
	for i := range missions {
		m := &missions[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		batch.Queue(query, m.ID, m.UserID, m.WeekID, m.Position, m.Title, m.Description, m.XP, m.Tokens, m.Completed).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&m.CreatedAt)
			})
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, "missions already generated for week", err)
		}
		return err
	}
	return nil
}

func (r *missionRepository) Update(ctx context.Context, mission *domain.WeeklyMission) error {
	if mission == nil {
		return domain.ErrInvalidPayload
	}
	tag, err := r.db.Exec(ctx, `
	UPDATE weekly_missions SET completed = $2, completed_at = $3
	WHERE id = $1`, mission.ID, mission.Completed, nullTimePtr(mission.CompletedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMissionNotFound
	}
	return nil
}

func scanMission(row scanner) (*domain.WeeklyMission, error) {
	var m domain.WeeklyMission
	var completedAt *time.Time
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.WeekID,
		&m.Position,
		&m.Title,
		&m.Description,
		&m.XP,
		&m.Tokens,
		&m.Completed,
		&completedAt,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	m.CompletedAt = completedAt
	return &m, nil
}
