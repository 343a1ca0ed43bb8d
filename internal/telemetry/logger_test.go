package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "devstop", "info")
	require.NoError(t, err)

	logger.Info().Str("instance_id", "i-1").Msg("stop initiated")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "devstop", entry["service"])
	assert.Equal(t, "i-1", entry["instance_id"])
	assert.Equal(t, "stop initiated", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "devstop", "WARN")
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "devstop", "loud")
	require.Error(t, err)
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "devstop", "debug")
	require.NoError(t, err)

	logger.With("aws_request_id", "req-1").Debug().Msg("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["aws_request_id"])
}

func TestOTELHook_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "devstop", "info")
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.WithContext(ctx).Info().Msg("traced")

	entry := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestOTELHook_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "devstop", "info")
	require.NoError(t, err)

	logger.WithContext(context.Background()).Info().Msg("untraced")

	entry := decodeLine(t, &buf)
	assert.NotContains(t, entry, "trace_id")
}

func TestNop(t *testing.T) {
	Nop().Error().Msg("discarded")
}
