package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextLogger estende o zap.Logger com métodos que utilizam contexto
type ContextLogger struct {
	*zap.Logger
}

// NewContextLogger cria um ContextLogger a partir de um zap.Logger
func NewContextLogger(logger *zap.Logger) *ContextLogger {
	return &ContextLogger{Logger: logger}
}

// With adiciona campos ao logger
func (l *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{Logger: l.Logger.With(fields...)}
}

// InfoCtx registra mensagens no nível info com contexto de rastreamento
func (l *ContextLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.Info(msg, l.addTraceFields(ctx, fields)...)
}

// ErrorCtx registra mensagens no nível error com contexto de rastreamento
func (l *ContextLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.Error(msg, l.addTraceFields(ctx, fields)...)
}

// WarnCtx registra mensagens no nível warn com contexto de rastreamento
func (l *ContextLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.Warn(msg, l.addTraceFields(ctx, fields)...)
}

// DebugCtx registra mensagens no nível debug com contexto de rastreamento
func (l *ContextLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.Debug(msg, l.addTraceFields(ctx, fields)...)
}

// addTraceFields extrai IDs de trace/span do contexto e os anexa aos campos
func (l *ContextLogger) addTraceFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return fields
	}

	return append(fields,
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
