package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"todo_app/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by RedisRateLimit
// and returns it for reuse. On an empty addr or a failed ping it returns nil
// and the limiter fails open.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiter disabled", "addr", addr, "error", err)
		_ = client.Close()
		redisClient = nil
		return nil
	}
	redisClient = client
	return client
}

// RedisRateLimit is a fixed-window limiter using INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + windowKey + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// RateLimit picks the Redis limiter when a client is configured and the
// in-process one otherwise.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisClient != nil {
		return RedisRateLimit(maxRequests, window)
	}
	return SimpleRateLimit(maxRequests, window)
}
