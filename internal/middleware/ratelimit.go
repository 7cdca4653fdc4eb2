package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OTPRateLimit limits OTP send requests per mobile (falling back to the
// client IP) using a per-minute Redis counter. Fails open on cache errors
// so an unavailable Redis never blocks logins outright.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			Mobile string `json:"mobile"`
		}
		_ = c.BodyParser(&req)

		key := strings.TrimSpace(req.Mobile)
		if key == "" {
			key = c.IP()
		}

		cnt, err := cache.Incr(c.UserContext(), "rl:otp:"+key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), "rl:otp:"+key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many OTP requests, try again later")
		}

		return c.Next()
	}
}
