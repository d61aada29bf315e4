package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface on top of a Redis list.
// It lets several hosts contribute to and read the same series without
// sharing a filesystem. Samples are RPUSHed as JSON, so insertion order
// is preserved.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	mu     sync.Mutex
}

// NewRedisStore creates a Redis-backed series store.
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string for no auth)
//   - db: Redis database number (typically 0)
//   - name: series name used in the list key (empty uses "taxa-cdi")
//   - ttl: expiration refreshed on every append (0 means no expiration)
//
// Returns an error if the connection to Redis fails or if parameters
// are invalid.
func NewRedisStore(addr, password string, db int, name string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}
	if name == "" {
		name = "taxa-cdi"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		key:    fmt.Sprintf("cditrend:series:%s", name),
		ttl:    ttl,
	}, nil
}

// Append pushes one sample onto the end of the series list.
func (r *RedisStore) Append(ctx context.Context, s Sample) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("failed to append sample to redis: %w", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.key, r.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set series ttl: %w", err)
		}
	}

	return nil
}

// Load returns every sample in the series, oldest first.
func (r *RedisStore) Load(ctx context.Context) ([]Sample, error) {
	items, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load series from redis: %w", err)
	}

	samples := make([]Sample, 0, len(items))
	for i, item := range items {
		var s Sample
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sample %d: %w", i, err)
		}
		samples = append(samples, s)
	}

	return samples, nil
}

// Close closes the Redis client connection.
// It is safe to call multiple times (idempotent).
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}

	return err
}

// Ping checks the Redis connection health.
// Returns an error if the connection is unavailable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
