package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"memeverse/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

// CheckRateLimit counts one hit for id on resource and reports whether it is
// still within limit for the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("memeverse:rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit enforces limit requests per window and client IP. With Redis the
// counters are shared between processes; without it an in-memory limiter is
// used. A Redis failure lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string) fiber.Handler {
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:        limit,
			Expiration: window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return resource + ":" + c.IP()
			},
			LimitReached: limitReached,
		})
	}

	return func(c *fiber.Ctx) error {
		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, "ip:"+c.IP(), limit, window)
		if err != nil {
			observability.Logger.WarnContext(c.UserContext(), "rate limit check failed, allowing request",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}
		if !allowed {
			return limitReached(c)
		}
		return c.Next()
	}
}

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": "Too many requests, please try again later.",
	})
}
