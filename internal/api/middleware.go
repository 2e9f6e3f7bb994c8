package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"goldword-tools/internal/util"
)

// corsHeaders stamps the CORS headers on every response, including requests
// without an Origin header that the cors middleware leaves untouched.
func corsHeaders() gin.HandlerFunc {
	allowHeaders := strings.Join(corsAllowHeaders, ", ")
	allowMethods := strings.Join(corsAllowMethods, ", ")
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Next()
	}
}

// requestLogger logs each request with method, path, status, and duration.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := util.StartTimer()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": timer.ElapsedMs(),
			"remote":      c.ClientIP(),
		}).Info("request")
	}
}
