// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// OrderIDKey is the context key for the order being processed
	OrderIDKey contextKey = "order_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and order_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if orderID, ok := ctx.Value(OrderIDKey).(string); ok && orderID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("order_id", orderID))}
	}

	return newLogger
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ReconciliationError logs a failed reconciliation attempt for an order.
func (l *Logger) ReconciliationError(orderID string, err error) {
	l.Error("reconciliation_error",
		slog.String("order_id", orderID),
		slog.String("error", err.Error()),
	)
}

// ContactDrift logs a mismatch between the external customer block and the
// portal's configured contact profile. Nothing is mutated; this is audit-only.
func (l *Logger) ContactDrift(orderID, portalID string, fields []string) {
	l.Warn("contact_drift",
		slog.String("order_id", orderID),
		slog.String("portal_id", portalID),
		slog.Any("fields", fields),
	)
}

// NotificationEvent logs a notification dispatch outcome.
func (l *Logger) NotificationEvent(orderID, channel string, sent, failed int) {
	if failed > 0 {
		l.Warn("notification_event",
			slog.String("order_id", orderID),
			slog.String("channel", channel),
			slog.Int("sent", sent),
			slog.Int("failed", failed),
		)
		return
	}
	l.Info("notification_event",
		slog.String("order_id", orderID),
		slog.String("channel", channel),
		slog.Int("sent", sent),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
