package middleware

import (
	"strconv"
	"time"

	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware contém os middlewares da API administrativa
type Middleware struct {
	logger             *zap.Logger
	metrics            *metrics.ControlPlaneMetrics
	recoveryMiddleware *RecoveryMiddleware
	tracingMiddleware  *TracingMiddleware
}

// NewMiddleware cria um novo conjunto de middlewares
func NewMiddleware(logger *zap.Logger, m *metrics.ControlPlaneMetrics) *Middleware {
	return &Middleware{
		logger:             logger,
		metrics:            m,
		recoveryMiddleware: NewRecoveryMiddleware(logger),
		tracingMiddleware:  NewTracingMiddleware(logger),
	}
}

// Recovery recupera de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// Tracing inicia um span por requisição
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}

// Logger registra cada requisição com latência e status
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= 500:
			m.logger.Error("requisição processada", fields...)
		case status >= 400:
			m.logger.Warn("requisição processada", fields...)
		default:
			m.logger.Info("requisição processada", fields...)
		}
	}
}

// Metrics registra contadores e latência das requisições
func (m *Middleware) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		m.metrics.HTTPRequest(path, c.Request.Method,
			strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
