//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"todolists/internal/ratelimit/models"
	"todolists/internal/ratelimit/store/bucket"
	"todolists/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(s.ctx))
}

func (s *RedisBucketStoreSuite) TestFixedWindow() {
	key := models.NewIPKey("192.0.2.10")
	const limit = 3

	for i := range limit {
		result, err := s.store.Allow(s.ctx, key, limit, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(limit-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, key, limit, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)
	s.LessOrEqual(result.RetryAfter, 60)

	ttl, err := s.redis.Client.TTL(s.ctx, key).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketStoreSuite) TestWindowExpiry() {
	key := models.NewIPKey("192.0.2.11")

	_, err := s.store.Allow(s.ctx, key, 1, time.Second)
	s.Require().NoError(err)
	denied, err := s.store.Allow(s.ctx, key, 1, time.Second)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	s.Eventually(func() bool {
		result, err := s.store.Allow(s.ctx, key, 1, time.Second)
		return err == nil && result.Allowed
	}, 5*time.Second, 200*time.Millisecond)
}

func (s *RedisBucketStoreSuite) TestReset() {
	key := models.NewIPKey("192.0.2.12")
	_, err := s.store.Allow(s.ctx, key, 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(s.ctx, key))

	result, err := s.store.Allow(s.ctx, key, 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
