package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		StoreDriver:        DriverMemory,
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		FetchLatencyMS:     1000,
		MutationLatencyMS:  500,
		PostsPerPage:       6,
		TracingSampleRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"negative fetch latency", func(c *Config) { c.FetchLatencyMS = -1 }, true},
		{"negative mutation latency", func(c *Config) { c.MutationLatencyMS = -5 }, true},
		{"zero page size", func(c *Config) { c.PostsPerPage = 0 }, true},
		{"sample ratio above one", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
		{"zero latency allowed", func(c *Config) { c.FetchLatencyMS, c.MutationLatencyMS = 0, 0 }, false},
		{"production postgres with ssl", func(c *Config) { c.Env, c.StoreDriver = "production", DriverPostgres }, false},
		{"production postgres without ssl", func(c *Config) {
			c.Env, c.StoreDriver, c.DBSSLMode = "production", DriverPostgres, "disable"
		}, true},
		{"prod postgres default password", func(c *Config) {
			c.Env, c.StoreDriver, c.DBPassword = "prod", DriverPostgres, "password"
		}, true},
		{"production memory ignores db settings", func(c *Config) {
			c.Env, c.DBSSLMode, c.DBPassword = "production", "disable", ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Chdir(t.TempDir())

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, c.StoreDriver)
	assert.Equal(t, time.Second, c.FetchLatency())
	assert.Equal(t, 500*time.Millisecond, c.MutationLatency())
	assert.Equal(t, 6, c.PostsPerPage)
	assert.Equal(t, "8080", c.Port)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "  Postgres ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("FETCH_LATENCY_MS", "0")
	t.Setenv("POSTS_PER_PAGE", "10")
	t.Chdir(t.TempDir())

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, c.StoreDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, time.Duration(0), c.FetchLatency())
	assert.Equal(t, 10, c.PostsPerPage)
}

func TestLoadConfig_ProfileFileRequired(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging")
	t.Chdir(t.TempDir())

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ProfileFileMerged(t *testing.T) {
	defer viper.Reset()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yml"), []byte("PORT: \"9090\"\nPOSTS_PER_PAGE: 12\n"), 0o600))
	t.Chdir(dir)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 12, c.PostsPerPage)
}

func TestConfig_DSN(t *testing.T) {
	c := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "folio"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=folio sslmode=disable", c.DSN())
}
