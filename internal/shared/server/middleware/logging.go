package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/shared/telemetry"
)

// Context keys handlers may set so the request log can correlate entities.
const (
	DocumentIDKey = "documentId"
	JobIDKey      = "jobId"
)

// Logging emits one structured log entry per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
		}
		if id := c.GetString(DocumentIDKey); id != "" {
			fields["document_id"] = id
		}
		if id := c.GetString(JobIDKey); id != "" {
			fields["job_id"] = id
		}
		telemetry.Info("request.complete", fields)
	}
}
