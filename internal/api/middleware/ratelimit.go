package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyFunc ключ, по которому считается лимит
type KeyFunc func(c *gin.Context) string

// ByUser ключ по пользователю из Auth, без него по IP
func ByUser(c *gin.Context) string {
	if userID := GetUserID(c); userID != uuid.Nil {
		return "user:" + userID.String()
	}
	return "ip:" + c.ClientIP()
}

func RateLimit(store *ratelimit.Store, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := store.Allow(key(c))
		SetRateLimitHeaders(c, decision)

		if !decision.Allowed {
			AbortRateLimited(c, decision)
			return
		}
		c.Next()
	}
}

// SetRateLimitHeaders X-RateLimit-Reset в миллисекундах unix-времени
func SetRateLimitHeaders(c *gin.Context, d ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.UnixMilli(), 10))
}

// AbortRateLimited Retry-After в секундах с округлением вверх, не меньше 1
func AbortRateLimited(c *gin.Context, d ratelimit.Decision) {
	retryAfter := int(math.Ceil(d.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":    "too many requests, try again in " + strconv.Itoa(retryAfter) + "s",
		"reset_at": d.ResetAt.UnixMilli(),
	})
}
