package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "go-gin-order-service/internal/transport/http/response"
)

// Timeout 给请求 ctx 加截止时间；下游（gorm/redis）按 ctx 取消，
// 超时且还没写响应时补一个 504
func Timeout(d time.Duration, l *zap.Logger) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		l.Warn("request timed out",
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Duration("limit", d),
		)
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, resp.Error(resp.CodeTimeout, "timeout"))
		}
	}
}
