// Package middleware provides request-scoped middleware: logging, rate limiting, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"reeltrack/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// CodeRateLimited is the error code sent with 429 responses.
const CodeRateLimited = "RATE_LIMITED"

// FailPolicy decides what happens to a request when Redis cannot answer.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

var errNoRedis = errors.New("rate limit store not configured")

// Environments where limits are never enforced.
var rateLimitDisabledEnvs = map[string]bool{
	"development": true,
	"stress":      true,
}

// RateLimitEnforced reports whether limits apply under the configured env.
func RateLimitEnforced(env string) bool {
	return !rateLimitDisabledEnvs[env]
}

// RateLimiter builds per-route limit handlers over one Redis client.
type RateLimiter struct {
	rdb     *redis.Client
	enforce bool
}

// NewRateLimiter returns a limiter for env, the loaded APP_ENV value.
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	return &RateLimiter{rdb: rdb, enforce: RateLimitEnforced(env)}
}

// Window is the outcome of one fixed-window check.
type Window struct {
	Allowed bool
	Count   int64
	ResetIn time.Duration
}

// CheckRateLimit counts one hit for id against resource and reports whether it
// is still within limit for the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (Window, error) {
	if rdb == nil {
		return Window{}, errNoRedis
	}

	key := "rl:" + resource + ":" + id
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return Window{}, err
	}

	return Window{
		Allowed: incr.Val() <= int64(limit),
		Count:   incr.Val(),
		ResetIn: ttl.Val(),
	}, nil
}

// Limit enforces limit requests per window, keyed by the authenticated
// user or else the client IP. name groups routes under one counter; without
// it the request path is used. Redis failures let the request through.
func (l *RateLimiter) Limit(limit int, window time.Duration, name ...string) fiber.Handler {
	return l.LimitWithPolicy(limit, window, FailOpen, name...)
}

// LimitWithPolicy is Limit with an explicit FailPolicy.
func (l *RateLimiter) LimitWithPolicy(limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	if !l.enforce {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			id = "user:" + uid
		}
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		w, err := CheckRateLimit(c.UserContext(), l.rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"resource", resource, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Rate limiting is temporarily unavailable",
				Code:  models.CodeInternal,
			})
		}

		if !w.Allowed {
			if w.ResetIn > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(w.ResetIn.Round(time.Second).Seconds())))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, try again later",
				Code:  CodeRateLimited,
			})
		}
		return c.Next()
	}
}
