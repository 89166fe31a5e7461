package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"housekeeper/pkg/logger"
)

// Logger logs one entry per request. Health checks and scrapes arrive every few
// seconds, so only server errors log above debug.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		write := log.WithContext(c.Request.Context()).Debugw
		if status >= 500 {
			write = log.WithContext(c.Request.Context()).Warnw
		}
		write("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}
