// Package logger provides structured logging for the KAM service.
// Implementations live in internal/infrastructure/monitoring; this package
// only defines the interface and field helpers shared across layers.
package logger

import (
	"context"
	"strings"
)

// Fields is a set of key-value pairs attached to a log entry
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional base fields
	WithFields(fields Fields) Logger

	// ForContext returns the logger bound to ctx, or the receiver
	ForContext(ctx context.Context) Logger
}

// sensitiveKeys lists field name fragments whose values are masked on output
var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"authorization",
	"private_key",
	"client_secret",
	"refresh_token",
	"access_token",
}

// Sanitize masks the value when the field key looks sensitive
func Sanitize(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			if str, ok := value.(string); ok && len(str) > 0 {
				return maskString(str)
			}
			return "***REDACTED***"
		}
	}
	return value
}

// maskString partially masks a string value
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
