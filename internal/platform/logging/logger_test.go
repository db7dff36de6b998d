package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{zap: zap.New(core)}, logs
}

func TestLogger_KeyValueArgs(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	logger.Info("standings built", "session_key", int64(9472), "error", errors.New("partial"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.EqualValues(t, 9472, fields["session_key"])
	require.Equal(t, "partial", fields["error"])
}

func TestLogger_ContextWithoutSpanAddsNoTraceFields(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	logger.InfoContext(context.Background(), "no span here")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.NotContains(t, entries[0].ContextMap(), "trace_id")
}

func TestLogger_ContextWithSpanAddsTraceFields(t *testing.T) {
	t.Parallel()

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger, logs := observedLogger()
	logger.WarnContext(ctx, "provider slow")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, spanCtx.TraceID().String(), fields["trace_id"])
	require.Equal(t, spanCtx.SpanID().String(), fields["span_id"])
}

func TestLogger_NilReceiverUsesDefault(t *testing.T) {
	var logger *Logger
	logger.Info("must not panic")
}

func TestWith_AttachesPersistentFields(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	scoped := logger.With("component", "openf1")
	scoped.Debug("request sent")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "openf1", entries[0].ContextMap()["component"])
}
