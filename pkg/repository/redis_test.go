package repository_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/omnix/pkg/interfaces"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/repository"
)

func TestRedis(t *testing.T) {
	testEvidenceCache(t, func(t *testing.T, clock *fakeClock) interfaces.EvidenceCache {
		mr := miniredis.RunT(t)
		cache := repository.NewRedis(mr.Addr(), "", 0, repository.WithClock(clock.Now))
		t.Cleanup(func() { _ = cache.Close() })
		return cache
	})
}

func TestRedisStoresWithPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache := repository.NewRedis(mr.Addr(), "", 0, repository.WithKeyPrefix("test:"))
	t.Cleanup(func() { _ = cache.Close() })

	gt.NoError(t, cache.Ping(ctx))
	gt.NoError(t, cache.PutEvidence(ctx, "acme|x1|laptop", sampleResult("a.com")))

	gt.True(t, mr.Exists("test:acme|x1|laptop"))
	gt.Equal(t, mr.TTL("test:acme|x1|laptop"), model.EvidenceTTL)
}

func TestRedisDeletesExpiredOnRead(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	clock := newFakeClock()
	cache := repository.NewRedis(mr.Addr(), "", 0, repository.WithClock(clock.Now))
	t.Cleanup(func() { _ = cache.Close() })

	gt.NoError(t, cache.PutEvidence(ctx, "k", sampleResult("a.com")))
	clock.Advance(model.EvidenceTTL + 1)

	got, err := cache.GetEvidence(ctx, "k")
	gt.NoError(t, err)
	gt.Nil(t, got)
	gt.False(t, mr.Exists("omnix:cache:k"))
}

func TestRedisBrokenEntry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache := repository.NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	gt.NoError(t, mr.Set("omnix:cache:k", "{not json"))
	_, err := cache.GetEvidence(ctx, "k")
	gt.Error(t, err)
}
