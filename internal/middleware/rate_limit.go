package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
	// PerRecipe counts each (user, recipe) pair separately
	PerRecipe bool
}

// RateLimiter is a fixed-window limiter backed by Redis. A nil limiter
// allows everything.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    log.With().Str("limiter", config.KeyPrefix).Logger(),
		now:    time.Now,
	}
}

// NewRecipeCreationRateLimiter limits recipe creation per user per hour.
func NewRecipeCreationRateLimiter(redisClient *redis.Client, limit int, log zerolog.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	}, log)
}

// NewRecipeModificationRateLimiter limits updates and deletes per user and
// recipe per hour.
func NewRecipeModificationRateLimiter(redisClient *redis.Client, limit int, log zerolog.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_modification",
		PerRecipe: true,
	}, log)
}

// Middleware enforces the limit for the authenticated caller. Redis
// failures are logged and the request goes through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		subject := strconv.FormatUint(uint64(p.UserID), 10)
		if rl.config.PerRecipe {
			recipeID := c.Param("id")
			if recipeID == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "recipe ID is required"})
				return
			}
			subject = subject + ":" + recipeID
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), subject)
		if err != nil {
			rl.log.Warn().Err(err).Str("subject", subject).Msg("rate limit check failed, allowing request")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts one request for subject in the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	key, resetTime := rl.window(subject)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	return count <= rl.config.Limit, remainingOf(rl.config.Limit, count), resetTime, nil
}

// Limit is the number of requests allowed per window.
func (rl *RateLimiter) Limit() int {
	return rl.config.Limit
}

func (rl *RateLimiter) Window() time.Duration {
	return rl.config.Window
}

// Remaining reports what is left for subject without counting a request.
func (rl *RateLimiter) Remaining(ctx context.Context, subject string) (int, time.Time, error) {
	key, resetTime := rl.window(subject)

	count, err := rl.redis.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return remainingOf(rl.config.Limit, count), resetTime, nil
}

func (rl *RateLimiter) window(subject string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix())
	return key, windowStart.Add(rl.config.Window)
}

func remainingOf(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
