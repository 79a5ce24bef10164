package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func restoreTracer(t *testing.T) {
	t.Helper()
	prevTracer := Tracer
	prevProvider := otel.GetTracerProvider()
	t.Cleanup(func() {
		Tracer = prevTracer
		otel.SetTracerProvider(prevProvider)
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	restoreTracer(t)

	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "folio-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_StdoutExporter(t *testing.T) {
	restoreTracer(t)
	var buf bytes.Buffer

	shutdown, err := InitTracing(context.Background(), TracingConfig{
		ServiceName:  "folio-test",
		Environment:  "test",
		Enabled:      true,
		Exporter:     ExporterStdout,
		SamplerRatio: 1,
		Output:       &buf,
	})
	require.NoError(t, err)

	span, _ := StartRepositorySpan(context.Background(), "create", "memory")
	assert.NotEmpty(t, span.TraceID())
	span.End()

	// shutdown flushes the batcher
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "repository.create")
	assert.Contains(t, buf.String(), "folio-test")
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	restoreTracer(t)

	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}
