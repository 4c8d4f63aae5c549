//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"intake/internal/upload/store"
	id "intake/pkg/domain"
	"intake/pkg/testutil/containers"
)

type RedisAttemptStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisAttemptStore
}

func TestRedisAttemptStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisAttemptStoreSuite))
}

func (s *RedisAttemptStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisAttemptStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisAttemptStoreSuite) TestGetDefaultsToZero() {
	n, err := s.store.Get(context.Background(), id.NewSubmissionID(), "passport")
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisAttemptStoreSuite) TestIncrement() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	for want := 1; want <= 3; want++ {
		n, err := s.store.Increment(ctx, sid, "passport")
		s.Require().NoError(err)
		s.Equal(want, n)
	}

	n, err := s.store.Get(ctx, sid, "passport")
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *RedisAttemptStoreSuite) TestCountersAreScoped() {
	ctx := context.Background()
	sid := id.NewSubmissionID()
	other := id.NewSubmissionID()

	_, err := s.store.Increment(ctx, sid, "passport")
	s.Require().NoError(err)

	n, err := s.store.Get(ctx, sid, "birth_certificate")
	s.Require().NoError(err)
	s.Zero(n, "counters are per doc type")

	n, err = s.store.Get(ctx, other, "passport")
	s.Require().NoError(err)
	s.Zero(n, "counters are per submission")
}
