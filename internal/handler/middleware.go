package handler

import (
	"time"

	"deja-vocab/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIdHeader = "X-Request-Id"

// RequestLogger 为每个请求分配request id并记录耗时
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Set("requestId", requestId)
		c.Header(RequestIdHeader, requestId)

		start := time.Now()
		c.Next()
		log.GetLogger().Info("http request",
			zap.String("requestId", requestId),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)))
	}
}
