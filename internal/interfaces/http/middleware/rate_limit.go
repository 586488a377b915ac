package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/metrics"
	"mechamind.backend/pkg/redis"
)

var incrWindow = redis.IncrWindow

// KeyFunc identifies the caller a limit applies to.
type KeyFunc func(c *gin.Context) string

// ByClientIP limits per remote address.
func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// ByUser limits per authenticated user, falling back to the address.
func ByUser(c *gin.Context) string {
	if id, ok := GetUserID(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + c.ClientIP()
}

// RateLimit allows max requests per fixed window for each key. When Redis is
// unreachable requests pass through.
func RateLimit(scope string, window time.Duration, max int64, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		count, ttl, err := incrWindow(ctx, fmt.Sprintf("ratelimit:%s:%s", scope, key(c)), window)
		if err != nil {
			logger.Warn(ctx, "Rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > max {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			response.Abort(c, domainerrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
