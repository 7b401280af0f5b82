package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

type eventRepository struct {
	db querier
}

// NewEventRepository creates a Postgres-backed progression ledger.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{db: pool}
}

func (r *eventRepository) Append(ctx context.Context, event domain.ProgressEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO progress_events (id, user_id, kind, subject_id, xp_delta, tokens_delta, level_before, level_after, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
	`
	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.UserID,
		string(event.Kind),
		event.SubjectID,
		event.XPDelta,
		event.TokensDelta,
		event.LevelBefore,
		event.LevelAfter,
		nullTime(event.CreatedAt),
	)
	return err
}

func (r *eventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProgressEvent, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, user_id, kind, subject_id, xp_delta, tokens_delta, level_before, level_after, created_at
	FROM progress_events
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`, userID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ProgressEvent
	for rows.Next() {
		var (
			e    domain.ProgressEvent
			kind string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.SubjectID, &e.XPDelta, &e.TokensDelta, &e.LevelBefore, &e.LevelAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = domain.EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
