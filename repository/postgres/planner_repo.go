package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

type areaRepository struct {
	db querier
}

// NewAreaRepository returns a Postgres-backed AreaRepository.
func NewAreaRepository(pool *pgxpool.Pool) repository.AreaRepository {
	return &areaRepository{db: pool}
}

func (r *areaRepository) ListByUser(ctx context.Context, userID string) ([]domain.Area, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, user_id, name, icon, created_at, updated_at
	FROM areas WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []domain.Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, *area)
	}
	return areas, rows.Err()
}

func (r *areaRepository) GetByID(ctx context.Context, id string) (*domain.Area, error) {
	return scanArea(r.db.QueryRow(ctx, `
	SELECT id, user_id, name, icon, created_at, updated_at
	FROM areas WHERE id = $1`, id))
}

func (r *areaRepository) Create(ctx context.Context, area *domain.Area) error {
	if area == nil || area.Name == "" {
		return domain.ErrInvalidPayload
	}
	if area.ID == "" {
		area.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
	INSERT INTO areas (id, user_id, name, icon) VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at`,
		area.ID, area.UserID, area.Name, area.Icon,
	).Scan(&area.CreatedAt, &area.UpdatedAt)
}

func (r *areaRepository) Update(ctx context.Context, area *domain.Area) error {
	if area == nil {
		return domain.ErrInvalidPayload
	}
	if err := r.db.QueryRow(ctx, `
	UPDATE areas SET name = $2, icon = $3, updated_at = NOW()
	WHERE id = $1 RETURNING updated_at`,
		area.ID, area.Name, area.Icon,
	).Scan(&area.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAreaNotFound
		}
		return err
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for projects and their tasks.
func (r *areaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM areas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAreaNotFound
	}
	return nil
}

func scanArea(row scanner) (*domain.Area, error) {
	var area domain.Area
	if err := row.Scan(&area.ID, &area.UserID, &area.Name, &area.Icon, &area.CreatedAt, &area.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAreaNotFound
		}
		return nil, err
	}
	return &area, nil
}

type projectRepository struct {
	db querier
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{db: pool}
}

func (r *projectRepository) ListByArea(ctx context.Context, areaID string) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, user_id, area_id, name, created_at, updated_at
	FROM projects WHERE area_id = $1 ORDER BY created_at`, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanProject(r.db.QueryRow(ctx, `
	SELECT id, user_id, area_id, name, created_at, updated_at
	FROM projects WHERE id = $1`, id))
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.Name == "" || project.AreaID == "" {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
	INSERT INTO projects (id, user_id, area_id, name) VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at`,
		project.ID, project.UserID, project.AreaID, project.Name,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	if err := r.db.QueryRow(ctx, `
	UPDATE projects SET name = $2, area_id = $3, updated_at = NOW()
	WHERE id = $1 RETURNING updated_at`,
		project.ID, project.Name, project.AreaID,
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for the project's tasks.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(&project.ID, &project.UserID, &project.AreaID, &project.Name, &project.CreatedAt, &project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}
