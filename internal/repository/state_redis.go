package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore persists run state as a single Redis string. It exists for
// deployments where the process has no durable disk.
type RedisStateStore struct {
	client *redis.Client
	key    string
}

// NewRedisStateStore connects to Redis and verifies the connection.
func NewRedisStateStore(addr, password string, db int, key string) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStateStore{client: client, key: key}, nil
}

func (s *RedisStateStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get state: %w", err)
	}
	return b, nil
}

func (s *RedisStateStore) Save(ctx context.Context, data []byte) error {
	// State must survive restarts, so no expiration.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set state: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}
