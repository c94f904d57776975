package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
	max   int64
}

func NewRateLimiter(redisClient *redis.Client, maxPerMinute int64) *RateLimiter {
	return &RateLimiter{redis: redisClient, max: maxPerMinute}
}

// Allow counts a request against a fixed one-minute window for the key. It
// fails open on redis errors so the limiter never takes the API down.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, time.Minute)
	}
	return count <= r.max
}

// Middleware rate limits by authenticated user, falling back to client IP,
// and rejects obvious scraper user agents.
func (r *RateLimiter) Middleware() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if r.isSuspiciousUserAgent(e.Request.UserAgent()) {
			return apis.NewForbiddenError("Access denied", nil)
		}

		id := e.RealIP()
		if e.Auth != nil {
			id = fmt.Sprintf("user:%s", e.Auth.Id)
		}

		if !r.Allow(e.Request.Context(), fmt.Sprintf("ratelimit:%s", id)) {
			return apis.NewApiError(http.StatusTooManyRequests,
				"Rate limit exceeded. Please try again later.", nil)
		}

		return e.Next()
	}
}

func (r *RateLimiter) isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
