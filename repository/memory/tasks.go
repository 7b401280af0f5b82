package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

type taskRepository struct{ v view }

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var out *domain.Task
	err := r.v.with(func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return domain.ErrTaskNotFound
		}
		t = cloneTask(t)
		out = &t
		return nil
	})
	return out, err
}

func (r *taskRepository) GetForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	err := r.v.with(func(st *state) error {
		ids := make([]string, 0, len(st.tasks))
		for id, t := range st.tasks {
			if filter.UserID != "" && t.UserID != filter.UserID {
				continue
			}
			if filter.ProjectID != "" && (t.ProjectID == nil || *t.ProjectID != filter.ProjectID) {
				continue
			}
			if filter.Completed != nil && t.Completed != *filter.Completed {
				continue
			}
			ids = append(ids, id)
		}
		sortByOrder(st, ids, true)

		limit := filter.Limit
		if limit <= 0 || limit > 100 {
			limit = 100
		}
		for i := filter.Offset; i < len(ids) && len(out) < limit; i++ {
			if i < 0 {
				continue
			}
			out = append(out, cloneTask(st.tasks[ids[i]]))
		}
		return nil
	})
	return out, err
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	err := r.v.with(func(st *state) error {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if task.ProjectID != nil {
			if _, ok := st.projects[*task.ProjectID]; !ok {
				return domain.ErrProjectNotFound
			}
		}
		now := st.stamp(task.ID)
		task.CreatedAt, task.UpdatedAt = now, now
		st.tasks[task.ID] = cloneTask(*task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.tasks[task.ID]
		if !ok {
			return domain.ErrTaskNotFound
		}
		task.CreatedAt = cur.CreatedAt
		task.UpdatedAt = st.stamp(task.ID)
		st.tasks[task.ID] = cloneTask(*task)
		return nil
	})
}

func (r *taskRepository) UpdateDetails(ctx context.Context, task *domain.Task, withReward bool) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.tasks[task.ID]
		if !ok {
			return domain.ErrTaskNotFound
		}
		if withReward && cur.Completed {
			return domain.ErrRewardLocked
		}
		next := cloneTask(cur)
		next.ProjectID = task.ProjectID
		next.SkillID = task.SkillID
		next.Title = task.Title
		next.Description = task.Description
		next.Notes = task.Notes
		next.Markdown = task.Markdown
		next.Links = append([]string(nil), task.Links...)
		next.DueDate = task.DueDate
		if withReward {
			next.XP = task.XP
			next.Tokens = task.Tokens
		}
		next.UpdatedAt = st.stamp(task.ID)
		st.tasks[task.ID] = next
		*task = cloneTask(next)
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return domain.ErrTaskNotFound
		}
		delete(st.tasks, id)
		return nil
	})
}
