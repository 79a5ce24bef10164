package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		nilRDB  bool
		allowed bool
		wantErr bool
	}{
		{name: "Test Environment Bypass", env: "test", nilRDB: true, allowed: true},
		{name: "Development Environment Bypass", env: "development", nilRDB: true, allowed: true},
		{name: "Nil Redis In Production", env: "production", nilRDB: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)

			var rdb *redis.Client
			if !tt.nilRDB {
				_, rdb = newTestRedis(t)
			}

			allowed, err := CheckRateLimit(context.Background(), rdb, "posts", "ip:1", 1, time.Minute)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoRateLimitStore)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestCheckRateLimit_CountsWithinWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "posts", "ip:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := CheckRateLimit(ctx, rdb, "posts", "ip:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.True(t, mr.Exists("rl:posts:ip:1"))
	mr.FastForward(2 * time.Minute)

	allowed, err = CheckRateLimit(ctx, rdb, "posts", "ip:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := newTestRedis(t)

	app := fiber.New()
	app.Post("/api/posts", RateLimit(rdb, 1, time.Minute, "create_post"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitWithPolicy_FailClosed(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/open", RateLimitWithPolicy(nil, 1, time.Minute, FailOpen), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/closed", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
