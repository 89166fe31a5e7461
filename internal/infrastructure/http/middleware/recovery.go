// Package middleware holds the gin middleware of the daemon's HTTP server.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"housekeeper/internal/core/apperror"
	"housekeeper/pkg/logger"
)

// Recovery turns a handler panic into a 500 JSON body carrying the request
// id. The stack goes to log only.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString("request_id")
			log.WithContext(c.Request.Context()).Errorw("panic recovered",
				"error", rec,
				"path", c.Request.URL.Path,
				"request_id", requestID,
				"stack", string(debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":       apperror.CodeInternal,
				"message":    "Internal error",
				"request_id": requestID,
			})
		}()
		c.Next()
	}
}
