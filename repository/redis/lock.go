package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redislib.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type locker struct {
	client *redislib.Client
	prefix string
}

// NewLocker returns a SET NX based lock used to serialize work across API replicas.
func NewLocker(client *redislib.Client) repository.Locker {
	return &locker{client: client, prefix: "lock:"}
}

func (l *locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBusy
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err()
	}, nil
}
