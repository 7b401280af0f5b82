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

const skillColumns = `id, user_id, parent_id, name, icon, level, points, max_points, created_at, updated_at`

type skillRepository struct {
	db querier
}

// NewSkillRepository returns a Postgres-backed SkillRepository.
func NewSkillRepository(pool *pgxpool.Pool) repository.SkillRepository {
	return &skillRepository{db: pool}
}

func (r *skillRepository) ListByUser(ctx context.Context, userID string) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT `+skillColumns+` FROM skills WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *skill)
	}
	return skills, rows.Err()
}

func (r *skillRepository) GetByID(ctx context.Context, id string) (*domain.Skill, error) {
	return scanSkill(r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id))
}

func (r *skillRepository) GetForUpdate(ctx context.Context, id string) (*domain.Skill, error) {
	return scanSkill(r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1 FOR UPDATE`, id))
}

func (r *skillRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM skills WHERE parent_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *skillRepository) Create(ctx context.Context, skill *domain.Skill) error {
	if skill == nil || skill.Name == "" {
		return domain.ErrInvalidPayload
	}
	if skill.ID == "" {
		skill.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO skills (id, user_id, parent_id, name, icon, level, points, max_points)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		skill.ID,
		skill.UserID,
		skill.ParentID,
		skill.Name,
		skill.Icon,
		skill.Level,
		skill.Points,
		skill.MaxPoints,
	).Scan(&skill.CreatedAt, &skill.UpdatedAt)
}

func (r *skillRepository) UpdateProgress(ctx context.Context, skill *domain.Skill) error {
	if skill == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE skills
	SET level = $2, points = $3, max_points = $4, updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.db.QueryRow(ctx, query, skill.ID, skill.Level, skill.Points, skill.MaxPoints).Scan(&skill.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSkillNotFound
		}
		return err
	}
	return nil
}

func scanSkill(row scanner) (*domain.Skill, error) {
	var skill domain.Skill
	if err := row.Scan(
		&skill.ID,
		&skill.UserID,
		&skill.ParentID,
		&skill.Name,
		&skill.Icon,
		&skill.Level,
		&skill.Points,
		&skill.MaxPoints,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSkillNotFound
		}
		return nil, err
	}
	return &skill, nil
}
