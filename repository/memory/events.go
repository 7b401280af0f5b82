package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
)

type eventRepository struct{ v view }

func (r *eventRepository) Append(ctx context.Context, event domain.ProgressEvent) error {
	return r.v.with(func(st *state) error {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().UTC()
		}
		st.events = append(st.events, event)
		return nil
	})
}

// ListByUser returns the newest events first.
func (r *eventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProgressEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var out []domain.ProgressEvent
	err := r.v.with(func(st *state) error {
		for i := len(st.events) - 1; i >= 0 && len(out) < limit; i-- {
			if st.events[i].UserID == userID {
				out = append(out, st.events[i])
			}
		}
		return nil
	})
	return out, err
}
