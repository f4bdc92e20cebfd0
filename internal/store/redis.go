package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-inclusion-checker/internal/config"
	"ai-inclusion-checker/internal/models"
)

const (
	keyPrefix     = "scan:"
	maxTxAttempts = 5
)

// NewRedisClient builds a client from config and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps each record as one JSON value so every write replaces the
// whole record. Keys expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(token string) string { return keyPrefix + token }

func (s *RedisStore) Create(ctx context.Context, token string, rec models.ScanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.client.Set(ctx, key(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", token, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (models.ScanRecord, error) {
	data, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ScanRecord{}, ErrNotFound
	}
	if err != nil {
		return models.ScanRecord{}, fmt.Errorf("redis get %s: %w", token, err)
	}
	var rec models.ScanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.ScanRecord{}, fmt.Errorf("decode record %s: %w", token, err)
	}
	return rec, nil
}

// Update runs fn inside WATCH/MULTI so a concurrent write to the same key
// aborts and retries the transaction.
func (s *RedisStore) Update(ctx context.Context, token string, fn func(*models.ScanRecord)) error {
	k := key(token)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var rec models.ScanRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode record %s: %w", token, err)
		}
		fn(&rec)
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %s: %w", token, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %s: too much contention", token)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", token, err)
	}
	return nil
}
