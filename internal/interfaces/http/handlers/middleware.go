package handlers

import (
	goerrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/infrastructure/monitoring"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
	"github.com/turtacn/kam/pkg/utils"
)

// RequestIDMiddleware assigns a request id and exposes it in the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.NewID()
		}
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs incoming requests.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		log.Info(c.Request.Context(), "Request processed", logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
	}
}

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error(c.Request.Context(), "Panic recovered", goerrors.New("panic"), logger.Fields{"panic": err})
				dto.SendError(c, errors.ErrServer("internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// TracingMiddleware adds tracing to requests.
func TracingMiddleware(tracing *monitoring.TracingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		propagator := propagation.TraceContext{}
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		ctx, span := tracing.StartSpan(
			ctx,
			"HTTP "+c.Request.Method,
			trace.WithAttributes(
				semconv.HTTPMethodKey.String(c.Request.Method),
				semconv.HTTPURLKey.String(c.Request.URL.String()),
			),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		c.Set("trace_id", span.SpanContext().TraceID().String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
