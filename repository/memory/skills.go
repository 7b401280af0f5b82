package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
)

type skillRepository struct{ v view }

func (r *skillRepository) ListByUser(ctx context.Context, userID string) ([]domain.Skill, error) {
	var out []domain.Skill
	err := r.v.with(func(st *state) error {
		var ids []string
		for id, s := range st.skills {
			if s.UserID == userID {
				ids = append(ids, id)
			}
		}
		sortByOrder(st, ids, false)
		for _, id := range ids {
			out = append(out, st.skills[id])
		}
		return nil
	})
	return out, err
}

func (r *skillRepository) GetByID(ctx context.Context, id string) (*domain.Skill, error) {
	var out *domain.Skill
	err := r.v.with(func(st *state) error {
		s, ok := st.skills[id]
		if !ok {
			return domain.ErrSkillNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *skillRepository) GetForUpdate(ctx context.Context, id string) (*domain.Skill, error) {
	return r.GetByID(ctx, id)
}

func (r *skillRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.v.with(func(st *state) error {
		for _, s := range st.skills {
			if s.ParentID != nil && *s.ParentID == id {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *skillRepository) Create(ctx context.Context, skill *domain.Skill) error {
	if skill == nil || skill.Name == "" {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		if skill.ParentID != nil {
			if _, ok := st.skills[*skill.ParentID]; !ok {
				return domain.ErrSkillNotFound
			}
		}
		if skill.ID == "" {
			skill.ID = uuid.NewString()
		}
		now := st.stamp(skill.ID)
		skill.CreatedAt, skill.UpdatedAt = now, now
		stored := *skill
		stored.Children = nil
		st.skills[skill.ID] = stored
		return nil
	})
}

func (r *skillRepository) UpdateProgress(ctx context.Context, skill *domain.Skill) error {
	if skill == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.skills[skill.ID]
		if !ok {
			return domain.ErrSkillNotFound
		}
		cur.Level = skill.Level
		cur.Points = skill.Points
		cur.MaxPoints = skill.MaxPoints
		cur.UpdatedAt = st.stamp(skill.ID)
		skill.UpdatedAt = cur.UpdatedAt
		st.skills[skill.ID] = cur
		return nil
	})
}
