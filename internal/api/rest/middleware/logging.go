package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/logger"
)

// Logging logs method, path, status and duration for each request.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	l.logger.Info("HTTP request completed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"ip", c.ClientIP())

	if status >= 500 {
		l.logger.Error("HTTP request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status)
	}
}
