package repository

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/middleware"
	"folio/internal/seed"

	"github.com/google/uuid"
)

// Simulated backend latency used when no WithLatency option is given.
const (
	DefaultFetchLatency    = 1000 * time.Millisecond
	DefaultMutationLatency = 500 * time.Millisecond
)

// settings are shared by every repository implementation. The SQL repository
// has real latency of its own and ignores the simulated delays.
type settings struct {
	loader        seed.Loader
	fetchLatency  time.Duration
	mutateLatency time.Duration
	now           func() time.Time
	newID         func() string
	fault         FaultFunc
	logger        *slog.Logger
}

// Option configures a repository.
type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		loader:        seed.DefaultLoader(),
		fetchLatency:  DefaultFetchLatency,
		mutateLatency: DefaultMutationLatency,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
		logger:        middleware.Logger,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLatency sets the simulated fetch and mutation delays.
func WithLatency(fetch, mutate time.Duration) Option {
	return func(s *settings) {
		s.fetchLatency = fetch
		s.mutateLatency = mutate
	}
}

// WithLoader sets where Initialize gets its dataset from.
func WithLoader(l seed.Loader) Option {
	return func(s *settings) { s.loader = l }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDGenerator overrides how new post ids are produced.
func WithIDGenerator(gen func() string) Option {
	return func(s *settings) { s.newID = gen }
}

// WithFaults installs a hook that can fail backend calls.
func WithFaults(f FaultFunc) Option {
	return func(s *settings) { s.fault = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func (s *settings) injectFault(ctx context.Context, op Operation) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(ctx, op)
}
