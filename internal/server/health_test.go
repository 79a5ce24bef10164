package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"folio/internal/repository"
	"folio/internal/seed"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestApp(repository.NewMemoryRepository())

	resp := doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck_RepositoryLifecycle(t *testing.T) {
	repo := repository.NewMemoryRepository(repository.WithLatency(0, 0))
	s, app := newTestApp(repo)

	resp := doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeBody[readiness](t, resp)
	assert.Equal(t, "loading", body.Checks["repository"])
	assert.Equal(t, "not_configured", body.Checks["database"])
	assert.Equal(t, "not_configured", body.Checks["redis"])

	require.NoError(t, s.InitializeRepository(context.Background()))

	resp = doJSON(t, app, http.MethodGet, "/api/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[readiness](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ready", body.Checks["repository"])
}

func TestReadinessCheck_RepositoryFailed(t *testing.T) {
	failing := func(context.Context) (seed.Dataset, error) { return seed.Dataset{}, errors.New("fixtures missing") }
	repo := repository.NewMemoryRepository(repository.WithLatency(0, 0), repository.WithLoader(failing))
	s, app := newTestApp(repo)

	require.Error(t, s.InitializeRepository(context.Background()))

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "failed", decodeBody[readiness](t, resp).Checks["repository"])
}

func TestReadinessCheck_Dependencies(t *testing.T) {
	sqlDB, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.RedisURL = mr.Addr()
	repo := repository.NewMemoryRepository(repository.WithLatency(0, 0))
	s := NewServerWithDeps(cfg, repo, db, rdb)
	app := s.NewApp()
	require.NoError(t, s.InitializeRepository(context.Background()))

	dbMock.ExpectPing()
	resp := doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[readiness](t, resp)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "healthy", body.Checks["redis"])

	dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	resp = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", decodeBody[readiness](t, resp).Checks["database"])

	dbMock.ExpectPing()
	mr.Close()
	resp = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", decodeBody[readiness](t, resp).Checks["redis"])

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestReadinessCheck_RedisConfiguredButUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "localhost:1"
	repo := repository.NewMemoryRepository(repository.WithLatency(0, 0))
	s := NewServerWithDeps(cfg, repo, nil, nil)
	app := s.NewApp()
	require.NoError(t, s.InitializeRepository(context.Background()))

	resp := doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", decodeBody[readiness](t, resp).Checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newMemoryApp(t)

	doJSON(t, app, http.MethodGet, "/api/posts", nil)
	resp := doJSON(t, app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	_, app := newTestApp(repository.NewMemoryRepository())

	req, err := http.NewRequest(http.MethodOptions, "/api/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
