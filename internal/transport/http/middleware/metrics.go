package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/core/metrics"
)

// Metrics 按路由模板统计，未匹配的请求归到同一个 label
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
