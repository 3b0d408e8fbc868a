package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"events-api/internal/models"
)

// DefaultCORSHeaders returns the header set attached to every response when
// authentication is disabled
func DefaultCORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "*",
		"Access-Control-Allow-Methods": "*",
	}
}

// CredentialedCORSHeaders returns the header set used when requests carry
// bearer tokens
func CredentialedCORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      "*",
		"Access-Control-Allow-Credentials": "true",
	}
}

// CORSHeaders picks the header set for the given authentication mode
func CORSHeaders(authEnabled bool) map[string]string {
	if authEnabled {
		return CredentialedCORSHeaders()
	}
	return DefaultCORSHeaders()
}

// CORS middleware applies the same header set to routes served directly by gin
func CORS(headers map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range headers {
			c.Header(k, v)
		}
		c.Next()
	}
}

// ErrorHandler middleware for centralized error handling
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"error":      err.Error(),
			}).Error("Request error")

			if c.Writer.Written() {
				return
			}

			switch err.Type {
			case gin.ErrorTypeBind, gin.ErrorTypePublic:
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Message: "Invalid request",
					Error:   err.Error(),
				})
			default:
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Message: "Internal server error",
					Error:   err.Error(),
				})
			}
		}
	}
}
