package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

const taskColumns = `id, user_id, project_id, skill_id, title, description, notes, markdown, links,
	completed, xp, bonus_xp, tokens, due_date, focus_seconds, completed_at, created_at, updated_at`

type taskRepository struct {
	db querier
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{db: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) GetForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR project_id = $2)
	  AND ($3::boolean IS NULL OR completed = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, filter.UserID, filter.ProjectID, filter.Completed, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, project_id, skill_id, title, description, notes, markdown, links,
		completed, xp, bonus_xp, tokens, due_date, focus_seconds, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING created_at, updated_at
	`

	if err := r.db.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.ProjectID,
		task.SkillID,
		task.Title,
		task.Description,
		task.Notes,
		task.Markdown,
		marshalList(task.Links),
		task.Completed,
		task.XP,
		task.BonusXP,
		task.Tokens,
		nullTimePtr(task.DueDate),
		task.FocusSeconds,
		nullTimePtr(task.CompletedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET project_id = $2,
		skill_id = $3,
		title = $4,
		description = $5,
		notes = $6,
		markdown = $7,
		links = $8,
		completed = $9,
		xp = $10,
		bonus_xp = $11,
		tokens = $12,
		due_date = $13,
		focus_seconds = $14,
		completed_at = $15,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.db.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.SkillID,
		task.Title,
		task.Description,
		task.Notes,
		task.Markdown,
		marshalList(task.Links),
		task.Completed,
		task.XP,
		task.BonusXP,
		task.Tokens,
		nullTimePtr(task.DueDate),
		task.FocusSeconds,
		nullTimePtr(task.CompletedAt),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) UpdateDetails(ctx context.Context, task *domain.Task, withReward bool) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET project_id = $2,
		skill_id = $3,
		title = $4,
		description = $5,
		notes = $6,
		markdown = $7,
		links = $8,
		due_date = $9,
		xp = CASE WHEN $12::boolean THEN $10 ELSE xp END,
		tokens = CASE WHEN $12::boolean THEN $11 ELSE tokens END,
		updated_at = NOW()
	WHERE id = $1 AND (NOT $12::boolean OR completed = false)
	RETURNING completed, xp, bonus_xp, tokens, focus_seconds, completed_at, updated_at
	`

	var completedAt *time.Time
	err := r.db.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.SkillID,
		task.Title,
		task.Description,
		task.Notes,
		task.Markdown,
		marshalList(task.Links),
		nullTimePtr(task.DueDate),
		task.XP,
		task.Tokens,
		withReward,
	).Scan(
		&task.Completed,
		&task.XP,
		&task.BonusXP,
		&task.Tokens,
		&task.FocusSeconds,
		&completedAt,
		&task.UpdatedAt,
	)
	if err == nil {
		task.CompletedAt = completedAt
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrRewardLocked
	}
	return domain.ErrTaskNotFound
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var (
		due         *time.Time
		completedAt *time.Time
		links       []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.ProjectID,
		&task.SkillID,
		&task.Title,
		&task.Description,
		&task.Notes,
		&task.Markdown,
		&links,
		&task.Completed,
		&task.XP,
		&task.BonusXP,
		&task.Tokens,
		&due,
		&task.FocusSeconds,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	task.CompletedAt = completedAt
	if len(links) > 0 {
		_ = json.Unmarshal(links, &task.Links)
	}

	return &task, nil
}
