package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"events-api/pkg/lambda"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// RequestIDHeader carries the request ID on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging with request context
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"request_id":     c.GetString(RequestIDKey),
			"method":         c.Request.Method,
			"path":           path,
			"status_code":    c.Writer.Status(),
			"latency_ms":     float64(latency.Nanoseconds()) / 1000000,
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
			"content_length": c.Request.ContentLength,
			"response_size":  c.Writer.Size(),
		}

		if raw != "" {
			fields["query"] = raw
		}

		logStatus(logger.WithFields(fields), c.Writer.Status())
	}
}

// RequestLogging logs one line per routed Lambda invocation
func RequestLogging(logger *logrus.Logger, next lambda.Handler) lambda.Handler {
	return func(ctx context.Context, req *lambda.Request) *lambda.Response {
		if req.RequestID == "" {
			req.RequestID = uuid.New().String()
		}

		start := time.Now()
		resp := next(ctx, req)
		latency := time.Since(start)

		fields := logrus.Fields{
			"request_id":  req.RequestID,
			"method":      req.Method,
			"resource":    req.Resource,
			"path":        req.Path,
			"status_code": resp.StatusCode,
			"latency_ms":  float64(latency.Nanoseconds()) / 1000000,
		}
		if identity, ok := IdentityFromContext(ctx); ok {
			fields["subject"] = identity.Subject
		}

		logStatus(logger.WithFields(fields), resp.StatusCode)
		return resp
	}
}

func logStatus(entry *logrus.Entry, status int) {
	switch {
	case status >= 500:
		entry.Error("Server error")
	case status >= 400:
		entry.Warn("Client error")
	default:
		entry.Info("Request completed")
	}
}
