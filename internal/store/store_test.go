package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-inclusion-checker/internal/config"
	"ai-inclusion-checker/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func repositories(t *testing.T) map[string]Repository {
	_, rdb := setupRedis(t)
	return map[string]Repository{
		"memory": NewMemory(),
		"redis":  NewRedis(rdb, time.Hour),
	}
}

func sampleRecord() models.ScanRecord {
	return models.ScanRecord{
		RequestID: "req-1",
		ScanToken: "tok-1",
		Domain:    "example.com",
		Scope:     models.ScopeLocal,
		City:      "Austin",
		Audience:  models.AudienceConsumers,
		Status:    models.StatusQueued,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRepositoryContract(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Get(ctx, "tok-1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, repo.Create(ctx, "tok-1", sampleRecord()))

			got, err := repo.Get(ctx, "tok-1")
			require.NoError(t, err)
			assert.Equal(t, models.StatusQueued, got.Status)
			assert.Equal(t, "Austin", got.City)
			assert.True(t, got.CreatedAt.Equal(sampleRecord().CreatedAt))

			require.NoError(t, repo.Update(ctx, "tok-1", func(r *models.ScanRecord) {
				r.Status = models.StatusComplete
				r.Category = "bakery"
				r.StructuralGaps = []string{"gap"}
			}))
			got, err = repo.Get(ctx, "tok-1")
			require.NoError(t, err)
			assert.Equal(t, models.StatusComplete, got.Status)
			assert.Equal(t, "bakery", got.Category)
			assert.Equal(t, "example.com", got.Domain)
			assert.Equal(t, []string{"gap"}, got.StructuralGaps)

			require.NoError(t, repo.Delete(ctx, "tok-1"))
			_, err = repo.Get(ctx, "tok-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestUpdateMissingIsNoop(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			called := false
			require.NoError(t, repo.Update(ctx, "ghost", func(*models.ScanRecord) { called = true }))
			assert.False(t, called)

			_, err := repo.Get(ctx, "ghost")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	rec := sampleRecord()
	rec.StructuralGaps = []string{"a"}
	require.NoError(t, s.Create(ctx, "t", rec))

	rec.StructuralGaps[0] = "mutated"
	got, err := s.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.StructuralGaps)

	got.StructuralGaps[0] = "mutated"
	again, _ := s.Get(ctx, "t")
	assert.Equal(t, []string{"a"}, again.StructuralGaps)
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentUpdates(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, "c", sampleRecord()))

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, repo.Update(ctx, "c", func(r *models.ScanRecord) {
						r.StructuralGaps = append(r.StructuralGaps, "x")
					}))
				}()
			}
			wg.Wait()

			got, err := repo.Get(ctx, "c")
			require.NoError(t, err)
			assert.Len(t, got.StructuralGaps, 4)
		})
	}
}

func TestRedisKeepsTTL(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx := context.Background()
	repo := NewRedis(rdb, 24*time.Hour)

	require.NoError(t, repo.Create(ctx, "ttl", sampleRecord()))
	assert.Equal(t, 24*time.Hour, mr.TTL("scan:ttl"))

	require.NoError(t, repo.Update(ctx, "ttl", func(r *models.ScanRecord) { r.Status = models.StatusRunning }))
	assert.Equal(t, 24*time.Hour, mr.TTL("scan:ttl"))

	mr.FastForward(25 * time.Hour)
	_, err := repo.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisClientPingFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisClient(ctx, config.RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}
