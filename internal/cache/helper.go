package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	span, ctx := observability.StartRedisSpan(ctx, "get")
	defer span.End()

	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		span.SetError(err)
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	span, ctx := observability.StartRedisSpan(ctx, "set")
	defer span.End()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// and stores the result with ttl. A broken cache falls through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues("error").Inc()
	case found:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
