// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"folio/internal/middleware"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	FetchLatencyMS    int    `mapstructure:"FETCH_LATENCY_MS"`
	MutationLatencyMS int    `mapstructure:"MUTATION_LATENCY_MS"`
	SeedFile          string `mapstructure:"SEED_FILE"`
	PostsPerPage      int    `mapstructure:"POSTS_PER_PAGE"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// the base file is optional
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		middleware.Logger.Info("Loaded profile-specific configuration", "file", "config."+env+".yml")
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", DriverMemory)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "folio")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEATURE_FLAGS", "related_posts=true")
	viper.SetDefault("FETCH_LATENCY_MS", 1000)
	viper.SetDefault("MUTATION_LATENCY_MS", 500)
	viper.SetDefault("SEED_FILE", "")
	viper.SetDefault("POSTS_PER_PAGE", 6)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.Env = strings.TrimSpace(c.Env)
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// FetchLatency is the simulated delay for loading the dataset.
func (c *Config) FetchLatency() time.Duration {
	return time.Duration(c.FetchLatencyMS) * time.Millisecond
}

// MutationLatency is the simulated delay for create, update and delete.
func (c *Config) MutationLatency() time.Duration {
	return time.Duration(c.MutationLatencyMS) * time.Millisecond
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMemory, DriverPostgres, c.StoreDriver)
	}
	if c.FetchLatencyMS < 0 || c.MutationLatencyMS < 0 {
		return errors.New("FETCH_LATENCY_MS and MUTATION_LATENCY_MS must not be negative")
	}
	if c.PostsPerPage <= 0 {
		return errors.New("POSTS_PER_PAGE must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() && c.StoreDriver == DriverPostgres {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
	}
	if c.IsProduction() && c.AllowedOrigins == "*" {
		middleware.Logger.Warn("ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
	}

	return nil
}
