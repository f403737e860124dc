package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimitDecision is the outcome of one rate limit check.
type LimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether a caller may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (LimitDecision, error)
}

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window limiter shared by every instance through
// Redis.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// NewPlanCreationRateLimiter limits how many plans a user may build per window.
func NewPlanCreationRateLimiter(redisClient *redis.Client, window time.Duration, limit int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:plan_creation",
	})
}

// Allow counts a request for key in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (LimitDecision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return LimitDecision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return LimitDecision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// minLocalIdle is the shortest time a key's bucket is kept after its last use.
const minLocalIdle = time.Minute

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter is a per-process token bucket limiter used when Redis is
// not configured. Buckets idle long enough to be full again are dropped.
type LocalRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalRateLimiter allows rps requests per second per key with the given burst.
func NewLocalRateLimiter(rps float64, burst int) *LocalRateLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := minLocalIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &LocalRateLimiter{
		buckets: make(map[string]*localBucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket.
func (l *LocalRateLimiter) Allow(_ context.Context, key string) (LimitDecision, error) {
	now := l.now()

	l.mu.Lock()
	if l.lastSweep.IsZero() {
		l.lastSweep = now
	} else if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	lim := b.lim
	l.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))

	reset := now
	if missing := float64(l.burst) - tokens; missing > 0 && l.rps > 0 {
		reset = now.Add(time.Duration(missing / float64(l.rps) * float64(time.Second)))
	}

	return LimitDecision{
		Allowed:   allowed,
		Limit:     l.burst,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// sweep drops buckets unused for at least l.idle. Callers hold l.mu.
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimitMiddleware enforces limiter per authenticated user, or per client
// IP for anonymous requests. Limiter failures let the request through.
func RateLimitMiddleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := UserID(c); ok {
			key = "user:" + id.String()
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(math.Ceil(time.Until(d.Reset).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests", d.Limit),
				"rate_limit_remaining": d.Remaining,
				"rate_limit_reset":     d.Reset.Unix(),
				"retry_after":          retryAfter,
			})
			return
		}

		c.Next()
	}
}
