package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fastygo/questify/domain"
)

type userRepository struct{ v view }

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.v.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	var out *domain.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (r *userRepository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		email := strings.ToLower(user.Email)
		for _, u := range st.users {
			if u.Email == email {
				return domain.ErrEmailTaken
			}
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		user.Email = email
		now := st.stamp(user.ID)
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.users[user.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		cur.Name = user.Name
		cur.PasswordHash = user.PasswordHash
		cur.UpdatedAt = st.stamp(user.ID)
		user.UpdatedAt = cur.UpdatedAt
		st.users[user.ID] = cur
		return nil
	})
}

func (r *userRepository) UpdateProgress(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.v.with(func(st *state) error {
		cur, ok := st.users[user.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if user.Tokens < 0 {
			return domain.NewError(domain.ErrCodeInvalid, "tokens cannot be negative")
		}
		cur.Level = user.Level
		cur.XP = user.XP
		cur.NextLevelXP = user.NextLevelXP
		cur.Tokens = user.Tokens
		cur.UpdatedAt = st.stamp(user.ID)
		user.UpdatedAt = cur.UpdatedAt
		st.users[user.ID] = cur
		return nil
	})
}
