package middleware

import (
	"net/http"
	"strconv"
	"time"

	"planeats/internal/infrastructure/ratelimit"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit 依用戶端 IP 的固定視窗限流。計數器無法使用時放行請求並記錄錯誤。
func RateLimit(store ratelimit.Store, scope string, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := store.Hit(c.Request.Context(), scope+":"+c.ClientIP(), requests, window)
		if err != nil {
			common.LogError("Rate limit store unavailable",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retryAfter := int(res.RetryAfter(time.Now()).Seconds())
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.String("scope", scope),
			)

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"code":       common.ErrCodeTooManyRequests,
				"error":      common.ErrTooManyRequests.Message,
				"retryAfter": retryAfter,
			})
			return
		}

		c.Next()
	}
}
