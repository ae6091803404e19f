package middlewares

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/tableorder/utils"
)

// LoggerMiddleware logs one line per request. The query string is left out
// since guest scans carry the table token there.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"request_id": requestid.Get(c),
			"method":     c.Request.Method,
			"status":     status,
			"latency":    time.Since(start),
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
		})
		if status >= 500 {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}
