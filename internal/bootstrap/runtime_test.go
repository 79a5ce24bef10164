package bootstrap

import (
	"context"
	"testing"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntime_Memory(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		StoreDriver: config.DriverMemory,
		RedisURL:    mr.Addr(),
	}

	rt, err := InitRuntime(cfg)
	require.NoError(t, err)
	assert.Nil(t, rt.DB)
	assert.NotNil(t, rt.Redis)

	assert.Equal(t, repository.StateUninitialized, rt.Repo.Status().State)
	require.NoError(t, rt.Repo.Initialize(context.Background()))

	posts, err := rt.Repo.Posts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestInitRuntime_NoRedis(t *testing.T) {
	t.Cleanup(func() { cache.SetClient(nil) })

	rt, err := InitRuntime(&config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.Nil(t, rt.Redis)
}

func TestRepositoryOptions_SeedFile(t *testing.T) {
	cfg := &config.Config{SeedFile: "does-not-exist.yml"}
	repo := repository.NewMemoryRepository(RepositoryOptions(cfg)...)

	err := repo.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, repository.StateError, repo.Status().State)
}
