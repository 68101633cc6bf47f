package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
)

// RequestLogger logs failed requests and recovers from handler panics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorLogger.WithFields(logFields(c, start)).
					Errorf("panic: %v\n%s", recovered, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			if c.Writer.Status() >= http.StatusInternalServerError {
				logger.ErrorLogger.WithFields(logFields(c, start)).
					Error("request failed")
				return
			}

			for _, err := range c.Errors {
				logger.ErrorLogger.WithFields(logFields(c, start)).
					Error(fmt.Sprintf("%v: %s", err.Type, err.Error()))
			}
		}()

		c.Next()
	}
}

func logFields(c *gin.Context, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
		"latency":   time.Since(start).String(),
	}
}
