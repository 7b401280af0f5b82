package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
)

type areaRepository struct{ v view }

func (r *areaRepository) ListByUser(ctx context.Context, userID string) ([]domain.Area, error) {
	var out []domain.Area
	err := r.v.with(func(st *state) error {
		var ids []string
		for id, a := range st.areas {
			if a.UserID == userID {
				ids = append(ids, id)
			}
		}
		sortByOrder(st, ids, false)
		for _, id := range ids {
			out = append(out, st.areas[id])
		}
		return nil
	})
	return out, err
}

func (r *areaRepository) GetByID(ctx context.Context, id string) (*domain.Area, error) {
	var out *domain.Area
	err := r.v.with(func(st *state) error {
		a, ok := st.areas[id]
		if !ok {
			return domain.ErrAreaNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *areaRepository) Create(ctx context.Context, area *domain.Area) error {
	if area == nil || area.Name == "" {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		if area.ID == "" {
			area.ID = uuid.NewString()
		}
		now := st.stamp(area.ID)
		area.CreatedAt, area.UpdatedAt = now, now
		st.areas[area.ID] = *area
		return nil
	})
}

func (r *areaRepository) Update(ctx context.Context, area *domain.Area) error {
	if area == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.areas[area.ID]
		if !ok {
			return domain.ErrAreaNotFound
		}
		area.CreatedAt = cur.CreatedAt
		area.UpdatedAt = st.stamp(area.ID)
		st.areas[area.ID] = *area
		return nil
	})
}

func (r *areaRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.areas[id]; !ok {
			return domain.ErrAreaNotFound
		}
		delete(st.areas, id)
		for pid, p := range st.projects {
			if p.AreaID == id {
				deleteProject(st, pid)
			}
		}
		return nil
	})
}

type projectRepository struct{ v view }

func (r *projectRepository) ListByArea(ctx context.Context, areaID string) ([]domain.Project, error) {
	var out []domain.Project
	err := r.v.with(func(st *state) error {
		var ids []string
		for id, p := range st.projects {
			if p.AreaID == areaID {
				ids = append(ids, id)
			}
		}
		sortByOrder(st, ids, false)
		for _, id := range ids {
			out = append(out, st.projects[id])
		}
		return nil
	})
	return out, err
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var out *domain.Project
	err := r.v.with(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return domain.ErrProjectNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.Name == "" || project.AreaID == "" {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		if _, ok := st.areas[project.AreaID]; !ok {
			return domain.ErrAreaNotFound
		}
		if project.ID == "" {
			project.ID = uuid.NewString()
		}
		now := st.stamp(project.ID)
		project.CreatedAt, project.UpdatedAt = now, now
		st.projects[project.ID] = *project
		return nil
	})
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.projects[project.ID]
		if !ok {
			return domain.ErrProjectNotFound
		}
		if _, ok := st.areas[project.AreaID]; !ok {
			return domain.ErrAreaNotFound
		}
		project.CreatedAt = cur.CreatedAt
		project.UpdatedAt = st.stamp(project.ID)
		st.projects[project.ID] = *project
		return nil
	})
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return domain.ErrProjectNotFound
		}
		deleteProject(st, id)
		return nil
	})
}

func deleteProject(st *state, id string) {
	delete(st.projects, id)
	for tid, t := range st.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			delete(st.tasks, tid)
		}
	}
}
