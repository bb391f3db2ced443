package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	// Keys returns all keys matching a glob-style pattern, e.g. "write_ahead:*",
	// with the client prefix stripped.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// GetTyped retrieves a key and unmarshals it into T.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, error) {
	var obj T
	var raw string
	if err := c.Get(ctx, key, &raw); err != nil {
		return obj, err
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return obj, err
	}
	return obj, nil
}
