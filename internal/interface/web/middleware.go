package web

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// LoggingMiddleware reports errors that happened during request handling.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				log.WithError(err.Err).WithFields(log.Fields{
					"method":  c.Request.Method,
					"path":    c.Request.URL.Path,
					"status":  c.Writer.Status(),
					"latency": time.Since(start).String(),
				}).Warn("request failed")
			}
		}
	}
}
