package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Prefix is prepended to every key so several clients can share a database.
	Prefix string
	// MaxValueBytes caps a single value. Zero means no cap beyond the server's own limits.
	MaxValueBytes int64
}

// RedisBackend stores values as plain redis strings.
type RedisBackend struct {
	client   *redis.Client
	prefix   string
	maxValue int64
}

// NewRedisBackend connects with a pooled client and pings the server before returning.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisBackendFromClient(client, cfg.Prefix, cfg.MaxValueBytes), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client, prefix string, maxValueBytes int64) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, maxValue: maxValueBytes}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if r.maxValue > 0 && int64(len(value)) > r.maxValue {
		return capacityExceeded("redis", key, nil)
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		if isRedisOOM(err) {
			return capacityExceeded("redis", key, err)
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// isRedisOOM matches the reply a server at maxmemory with a noeviction policy sends.
func isRedisOOM(err error) bool {
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return strings.HasPrefix(redisErr.Error(), "OOM")
	}
	return false
}
