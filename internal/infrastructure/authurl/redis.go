package authurl

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
)

// RedisStore shares the URI across processes, for deployments where the
// HTTP surface and the poller run separately.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetCurrent(ctx context.Context, uri string) error {
	if err := s.client.Set(ctx, constants.CacheKeyAuthURL, uri, constants.AuthURLCacheTTL).Err(); err != nil {
		return errors.ErrPersistence("storing auth url failed").WithCause(err)
	}
	return nil
}

func (s *RedisStore) Current(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, constants.CacheKeyAuthURL).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.ErrPersistence("reading auth url failed").WithCause(err)
	}
	return v, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, constants.CacheKeyAuthURL).Err(); err != nil {
		return errors.ErrPersistence("clearing auth url failed").WithCause(err)
	}
	return nil
}
