package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

const (
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// sessionRepository keeps each bearer session as a hash under session:<jti>.
// Redis expires the key together with the token.
type sessionRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &sessionRepository{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	session := &domain.Session{
		ID:     id,
		UserID: fields[fieldUserID],
		Email:  fields[fieldEmail],
	}
	if session.CreatedAt, err = parseTime(fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if session.ExpiresAt, err = parseTime(fields[fieldExpiresAt]); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	if !session.ExpiresAt.After(time.Now()) {
		return domain.ErrTokenExpired
	}

	key := r.key(session.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUserID, session.UserID,
			fieldEmail, session.Email,
			fieldCreatedAt, session.CreatedAt.UTC().Format(time.RFC3339Nano),
			fieldExpiresAt, session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *sessionRepository) key(id string) string {
	return r.prefix + id
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
