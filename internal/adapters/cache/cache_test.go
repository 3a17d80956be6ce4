package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/cache"
	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/core"
)

type stoppableRepo interface {
	core.CacheRepository
	Stop()
}

func sampleEntry(key string, ttl time.Duration) *core.CacheEntry {
	sent := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	emails := []analysis.EmailSummary{analysis.NewEmailSummary("m-1", "Hello", "a@example.com", &sent, "hi there")}
	now := time.Now().Truncate(time.Second)
	return &core.CacheEntry{
		Key:       key,
		Result:    analysis.Normalize(`{"summary":"ok","emotions":{"Joy":70,"Calm":30},"stressScore":20,"emails":[{"sentiment":"Joy","sentimentScore":10}]}`, emails),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func repositories(t *testing.T) map[string]stoppableRepo {
	sqlite, err := cache.NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), time.Hour)
	require.NoError(t, err)

	return map[string]stoppableRepo{
		"memory": cache.NewMemoryCache(zap.NewNop(), time.Hour),
		"sqlite": sqlite,
	}
}

func TestCacheRepositories(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Stop()

			_, err := repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, cache.ErrNotFound)

			entry := sampleEntry("k1", time.Hour)
			require.NoError(t, repo.Set(ctx, entry))

			got, err := repo.Get(ctx, "k1")
			require.NoError(t, err)
			assert.Equal(t, entry.Key, got.Key)
			assert.Equal(t, entry.Result.Summary, got.Result.Summary)
			assert.Equal(t, entry.Result.Emotions, got.Result.Emotions)
			assert.Equal(t, entry.Result.StressScore, got.Result.StressScore)
			require.Len(t, got.Result.Emails, 1)
			assert.Equal(t, "Joy", got.Result.Emails[0].Sentiment)
			assert.True(t, entry.Result.Emails[0].SentAt.Equal(*got.Result.Emails[0].SentAt))
			assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))

			replacement := sampleEntry("k1", time.Hour)
			replacement.Result.Summary = "replaced"
			require.NoError(t, repo.Set(ctx, replacement))
			got, err = repo.Get(ctx, "k1")
			require.NoError(t, err)
			assert.Equal(t, "replaced", got.Result.Summary)

			require.NoError(t, repo.Delete(ctx, "k1"))
			_, err = repo.Get(ctx, "k1")
			assert.ErrorIs(t, err, cache.ErrNotFound)
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Stop()

			require.NoError(t, repo.Set(ctx, sampleEntry("old", -time.Minute)))
			require.NoError(t, repo.Set(ctx, sampleEntry("fresh", time.Hour)))

			_, err := repo.Get(ctx, "old")
			assert.ErrorIs(t, err, cache.ErrExpired)

			require.NoError(t, repo.Cleanup(ctx))

			_, err = repo.Get(ctx, "old")
			assert.ErrorIs(t, err, cache.ErrNotFound)
			_, err = repo.Get(ctx, "fresh")
			assert.NoError(t, err)
		})
	}
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	c := cache.NewMemoryCache(zap.NewNop(), time.Millisecond)
	require.NoError(t, c.Set(context.Background(), sampleEntry("k", -time.Second)))

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	c.Stop()
	c.Stop()
}
