package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/diillson/gateway-admin-go/pkg/logging"
)

func newObservedLogger() (*logging.ContextLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewContextLogger(zap.New(core)), logs
}

func tracedContext(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), spanCtx), spanCtx
}

func TestContextLoggerAppendsTraceFields(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx, spanCtx := tracedContext(t)

	logger.InfoCtx(ctx, "rota criada", zap.String("routeId", "r1"))

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "r1", fields["routeId"])
	assert.Equal(t, spanCtx.TraceID().String(), fields["trace_id"])
	assert.Equal(t, spanCtx.SpanID().String(), fields["span_id"])
}

func TestContextLoggerWithoutSpanOmitsTraceFields(t *testing.T) {
	logger, logs := newObservedLogger()

	logger.ErrorCtx(context.Background(), "falha ao persistir rota")

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.NotContains(t, fields, "span_id")
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestContextLoggerLevelsAndWith(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx, _ := tracedContext(t)

	scoped := logger.With(zap.String("environment", "Production"))
	scoped.WarnCtx(ctx, "falha ao invalidar cache após mutação")
	scoped.DebugCtx(ctx, "recarga obsoleta não armazenada no cache")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "Production", fields["environment"])
		assert.Contains(t, fields, "trace_id")
	}
}

func TestContextLoggerNilContextIsSafe(t *testing.T) {
	logger, logs := newObservedLogger()

	var ctx context.Context
	logger.InfoCtx(ctx, "configuração recompilada")

	require.Len(t, logs.All(), 1)
}
