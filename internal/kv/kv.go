// Package kv is the string key-value store templates persist into. The
// SQLite backend is the default; Redis lets several processes share one
// template list.
package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hpungsan/autord/internal/db"
)

// Store reads and writes whole string values by key.
type Store interface {
	// Get returns the value under key; ok is false when the key was never
	// written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// SQLiteStore keeps values in the kv table of the local database.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLite wraps an initialized database.
func NewSQLite(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: conn}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	return db.GetValue(ctx, s.DB, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return db.SetValue(ctx, s.DB, key, value)
}

// DefaultRedisPrefix namespaces autord keys in a shared Redis database.
const DefaultRedisPrefix = "autord:"

// RedisStore keeps values as plain Redis strings without expiry.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

// NewRedis connects to addr. The connection is lazy; call HealthCheck to
// fail fast.
func NewRedis(addr, password string, database int) *RedisStore {
	return &RedisStore{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       database,
		}),
		Prefix: DefaultRedisPrefix,
	}
}

func (s *RedisStore) key(k string) string { return s.Prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.Client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// HealthCheck pings the server.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.Client.Close()
}
