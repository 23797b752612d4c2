package httpmiddleware

import (
	"net/http"
	"time"

	"newsgraph/backend/go/pkg/logger"
	"newsgraph/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceHeader 是请求追踪 ID 使用的请求头。
const TraceHeader = "X-Trace-Id"

// RateLimit 在令牌不足时直接返回 429。
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Trace 为每个请求分配追踪 ID (沿用调用方传入的值)，并在请求结束后记录访问日志。
func Trace(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set("traceID", traceID)
		c.Header(TraceHeader, traceID)

		start := time.Now()
		c.Next()

		logger.New(serviceName, traceID, "").
			WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String()).
			Debug("请求处理完成")
	}
}

// TraceID 返回当前请求的追踪 ID。
func TraceID(c *gin.Context) string {
	return c.GetString("traceID")
}
