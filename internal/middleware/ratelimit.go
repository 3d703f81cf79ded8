package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-shop-api/internal/config"
)

// windowStep advances the counter for a client key by one request and
// returns the script result: {count within the current window, ttl in ms}.
type windowStep func(ctx context.Context, key string, windowMs int64) (interface{}, error)

// NewFixedWindow returns a rate limiting middleware enforcing at most
// cfg.Limit requests per cfg.Window per client IP across the whole API.
// Counters live in Redis keyed by IP; the first request of a window sets
// the expiry, so the window is fixed rather than sliding. When Redis is
// unavailable the middleware degrades to pass-through rather than taking
// the API down with it.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowScript := redis.NewScript(`
        local count = redis.call('INCR', KEYS[1])
        if count == 1 then
            redis.call('PEXPIRE', KEYS[1], ARGV[1])
        end
        local ttl = redis.call('PTTL', KEYS[1])
        return { count, ttl }
    `)

	return fixedWindow(cfg, func(ctx context.Context, key string, windowMs int64) (interface{}, error) {
		return windowScript.Run(ctx, rdb, []string{key}, windowMs).Result()
	})
}

// fixedWindow holds the limiter logic with the counter store abstracted
// behind step, so the 429 path can be exercised without a live Redis.
func fixedWindow(cfg config.RateLimitConfig, step windowStep) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":ip:" + ip

			ctx := c.Request().Context()
			vals, err := step(ctx, key, cfg.Window.Milliseconds())
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				}
				return next(c)
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 2 {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
				}
				return next(c)
			}
			count := asInt64(arr[0])
			ttlMs := asInt64(arr[1])

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				secs := int(math.Ceil(float64(ttlMs) / 1000.0))
				if ttlMs < 0 {
					// PTTL is negative when the key has no expiry.
					secs = int(cfg.Window / time.Second)
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "too many requests from this api, please try again after five minutes",
				})
			}

			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
