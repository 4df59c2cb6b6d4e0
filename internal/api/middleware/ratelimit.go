package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"studiodesk/internal/adapters/redis"
	"studiodesk/internal/metrics"
	"studiodesk/pkg/logger"
)

// TokenBucket takes one token from the bucket stored at key
type TokenBucket interface {
	TakeToken(ctx context.Context, key string, capacity int, interval time.Duration) (redis.BucketResult, error)
}

// RateLimitConfig sizes the per-client bucket
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	Prefix    string
}

// RateLimit allows Burst requests at once per client IP and route, refilled at PerMinute.
// A nil bucket or PerMinute <= 0 disables the limit. Redis errors let the request through.
func RateLimit(bucket TokenBucket, cfg RateLimitConfig, log *logger.Logger) echo.MiddlewareFunc {
	if bucket == nil || cfg.PerMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	interval := time.Minute / time.Duration(cfg.PerMinute)
	log = log.With("component", "rate_limit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)

			res, err := bucket.TakeToken(c.Request().Context(), key, cfg.Burst, interval)
			if err != nil {
				log.Warnw("Rate limit check failed, allowing request", "key", key, "error", err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimited.WithLabelValues("http_agent").Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func rateKey(prefix string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, "ip", ip, "route", c.Request().Method + " " + c.Path()}, ":")
}
