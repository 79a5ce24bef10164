// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key under which the request correlation id is stored.
const CorrelationID LogContextKey = "correlation_id"

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging    bool
	EnableServiceLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:    true,
	EnableServiceLogging: true,
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	backend string
	logger  *slog.Logger
}

// NewRepoLogger creates a RepoLogger tagged with the storage backend name.
func NewRepoLogger(logger *slog.Logger, backend string) *RepoLogger {
	return &RepoLogger{backend: backend, logger: logger}
}

func (l *RepoLogger) log(ctx context.Context, msg, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging || l.logger == nil {
		return
	}
	attrs := []any{
		slog.String("backend", l.backend),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, msg, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "repository create", "create", fields)
}

// LogRead logs a repository read operation.
func (l *RepoLogger) LogRead(ctx context.Context, operation string, fields map[string]any) {
	l.log(ctx, "repository read", operation, fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "repository update", "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, "repository delete", "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging || l.logger == nil {
		return
	}
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("backend", l.backend),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// ServiceLogger logs service method calls.
type ServiceLogger struct {
	service string
	logger  *slog.Logger
}

// NewServiceLogger creates a ServiceLogger for the named service.
func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{service: service, logger: logger}
}

// LogServiceCall logs a service method call.
func (l *ServiceLogger) LogServiceCall(ctx context.Context, method string, fields map[string]any) {
	if !Config.EnableServiceLogging || l.logger == nil {
		return
	}
	attrs := []any{
		slog.String("service", l.service),
		slog.String("method", method),
		slog.String("type", "service_call"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "service call", attrs...)
}
