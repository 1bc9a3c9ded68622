package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"givehub-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "token:"

// RedisStore keeps tokens as token:<purpose>:<token> keys with a TTL.
type RedisStore struct {
	Rdb *redis.Client
}

func redisKey(purpose Purpose, token string) string {
	return redisKeyPrefix + string(purpose) + ":" + token
}

func (s *RedisStore) Issue(ctx context.Context, purpose Purpose, subject string, ttl time.Duration) (string, error) {
	for i := 0; i < maxIssueAttempts; i++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}
		ok, err := s.Rdb.SetNX(ctx, redisKey(purpose, token), subject, ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
	}
	return "", fmt.Errorf("issue %s token: exhausted %d attempts", purpose, maxIssueAttempts)
}

// Consume uses GETDEL so the read and the delete are one server-side step.
func (s *RedisStore) Consume(ctx context.Context, purpose Purpose, token string) (string, error) {
	if token == "" {
		return "", domain.ErrTokenNotFound
	}
	subject, err := s.Rdb.GetDel(ctx, redisKey(purpose, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return subject, nil
}
