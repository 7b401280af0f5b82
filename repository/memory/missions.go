package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
)

type missionRepository struct{ v view }

func (r *missionRepository) ListByWeek(ctx context.Context, userID, weekID string) ([]domain.WeeklyMission, error) {
	var out []domain.WeeklyMission
	err := r.v.with(func(st *state) error {
		for _, m := range st.missions {
			if m.UserID == userID && m.WeekID == weekID {
				out = append(out, m)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
		return nil
	})
	return out, err
}

func (r *missionRepository) GetForUpdate(ctx context.Context, id string) (*domain.WeeklyMission, error) {
	var out *domain.WeeklyMission
	err := r.v.with(func(st *state) error {
		m, ok := st.missions[id]
		if !ok {
			return domain.ErrMissionNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *missionRepository) CreateBatch(ctx context.Context, missions []domain.WeeklyMission) error {
	return r.v.with(func(st *state) error {
		for _, m := range missions {
			for _, existing := range st.missions {
				if existing.UserID == m.UserID && existing.WeekID == m.WeekID && existing.Position == m.Position {
					return domain.NewError(domain.ErrCodeConflict, "missions already generated for week")
				}
			}
		}
		for i := range missions {
			m := &missions[i]
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.CreatedAt = st.stamp(m.ID)
			st.missions[m.ID] = *m
		}
		return nil
	})
}

func (r *missionRepository) Update(ctx context.Context, mission *domain.WeeklyMission) error {
	if mission == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.missions[mission.ID]
		if !ok {
			return domain.ErrMissionNotFound
		}
		cur.Completed = mission.Completed
		cur.CompletedAt = mission.CompletedAt
		st.missions[mission.ID] = cur
		return nil
	})
}
