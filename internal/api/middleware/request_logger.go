package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context keys the access log picks up when a handler sets them. The
// chat and conversation handlers record which agent and conversation a
// request touched; requests on other surfaces simply omit the fields.
var logContextKeys = []string{"user_id", "agent_slug", "conversation_id"}

// RequestLogger tags each request with an id (honoring an inbound
// X-Request-Id) and writes one structured line after the handler runs.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set("request_id", reqID)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			// unmatched routes have no template
			route = c.Request.URL.Path
		}

		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		for _, k := range logContextKeys {
			if v, ok := c.Get(k); ok {
				fields[k] = v
			}
		}

		entry := l.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
