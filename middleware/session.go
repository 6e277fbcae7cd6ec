package middleware

import (
	"time"

	"bookinghub/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestId"
)

// RequestID tạo requestId nếu client chưa gửi và gán vào context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(ContextRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)

		c.Next()
	}
}

// RequestLogger ghi mỗi request thành một dòng log có cấu trúc
func RequestLogger(log *logger.DefaultLogger) gin.HandlerFunc {
	zl := log.Zerolog()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := zl.Info()
		if status >= 500 {
			event = zl.Error()
		} else if status >= 400 {
			event = zl.Warn()
		}
		event.
			Str("requestId", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
