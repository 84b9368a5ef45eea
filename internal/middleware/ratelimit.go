package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rijalsawan/photography-sub000/internal/metrics"
	"go.uber.org/zap"
)

// RateLimit is a fixed-window limiter shared across instances through Redis. Callers
// are keyed by their actor id when authenticated and by IP otherwise. A nil client
// disables limiting.
func RateLimit(client *redis.Client, maxRequests int, window time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if client == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return rateLimit(client, maxRequests, window, log)
}

// windowCounter is the part of the redis client the limiter uses.
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func rateLimit(client windowCounter, maxRequests int, window time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	m := metrics.Get()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if maxRequests <= 0 {
			return next
		}
		return func(c echo.Context) error {
			who := ActorID(c)
			if who == "" {
				who = "ip:" + c.RealIP()
			}
			key := fmt.Sprintf("rate_limit:%s", who)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				log.Error("rate limit check failed", zap.String("key", key), zap.Error(err))
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
			}
			if count == 1 {
				if err := client.Expire(ctx, key, window).Err(); err != nil {
					log.Warn("failed to set rate limit expiration", zap.String("key", key), zap.Error(err))
				}
			}

			if count > int64(maxRequests) {
				m.RateLimitExceededTotal.Inc()
				log.Warn("rate limit exceeded", zap.String("key", key), zap.Int64("requests", count))
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
