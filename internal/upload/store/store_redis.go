package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "intake/pkg/domain"
)

const attemptKeyPrefix = "upload:attempts:"

// RedisAttemptStore shares attempt counters across instances. Keys carry no
// TTL; counters are scoped to a submission's lifetime, which is short.
type RedisAttemptStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func attemptsKey(sid id.SubmissionID, docType string) string {
	return fmt.Sprintf("%s%s:%s", attemptKeyPrefix, sid.String(), docType)
}

func (s *RedisAttemptStore) Get(ctx context.Context, sid id.SubmissionID, docType string) (int, error) {
	n, err := s.client.Get(ctx, attemptsKey(sid, docType)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get attempt counter: %w", err)
	}
	return n, nil
}

func (s *RedisAttemptStore) Increment(ctx context.Context, sid id.SubmissionID, docType string) (int, error) {
	n, err := s.client.Incr(ctx, attemptsKey(sid, docType)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempt counter: %w", err)
	}
	return int(n), nil
}
