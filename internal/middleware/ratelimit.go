package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/obs"
)

// windowScript counts a hit in the fixed window named by KEYS[1] and
// returns {count, ttl_ms}. The key expires with its window.
var windowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return { count, ttl }
`)

// NewFixedWindow limits requests per key to cfg.Limit per cfg.Window, with
// windows aligned to multiples of cfg.Window since the epoch. A Redis
// failure lets the request through. now defaults to time.Now.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger, now func() time.Time) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if now == nil {
		now = time.Now
	}
	windowMs := cfg.Window.Milliseconds()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nowMs := now().UnixMilli()
			start := nowMs - nowMs%windowMs
			key := buildRateKey(cfg, c) + ":" + strconv.FormatInt(start, 10)

			vals, err := windowScript.Run(c.Request().Context(), rdb, []string{key}, windowMs).Int64Slice()
			if err != nil || len(vals) != 2 {
				logger.Warn("edge rate limit unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}
			count := vals[0]

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retryMs := start + windowMs - nowMs
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				h.Set("Retry-After", strconv.Itoa(secs))
				obs.RateLimitRejections.WithLabelValues("edge").Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := subject(c)
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
