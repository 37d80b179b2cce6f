package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

const (
	redisKeyPrefix = "auction-scraper:snapshot:"
	redisTimeout   = 10 * time.Second
)

// RedisSnapshotStore keeps each checkpoint as a JSON string under its own key.
// Snapshots never expire.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore connects to the Redis instance at url
// (redis://host:port/db).
func NewRedisSnapshotStore(url string) (*RedisSnapshotStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisSnapshotStore{client: client}, nil
}

func snapshotKey(name string) string {
	return redisKeyPrefix + name
}

// Load implements SnapshotStore.
func (s *RedisSnapshotStore) Load(name string, v any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, snapshotKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, &models.SnapshotError{Name: name, Err: err}
	}

	if err := json.Unmarshal(val, v); err != nil {
		return false, &models.SnapshotError{Name: name, Err: fmt.Errorf("decode: %w", err)}
	}
	return true, nil
}

// Save implements SnapshotStore.
func (s *RedisSnapshotStore) Save(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return &models.SnapshotError{Name: name, Err: fmt.Errorf("encode: %w", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, snapshotKey(name), b, 0).Err(); err != nil {
		return &models.SnapshotError{Name: name, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}
