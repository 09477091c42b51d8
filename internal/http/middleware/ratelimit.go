// This file implements process-local token-bucket rate limiting on top of
// golang.org/x/time/rate.
//
// Every request draws from a general bucket keyed by caller: the user id when
// a bearer token was accepted, the client IP otherwise. Routes registered
// with Limit additionally draw from their own, usually tighter, bucket. The
// router uses this for the handoff endpoints that take a guessable secret
// (transfer-code claims and QR verification), where the general allowance
// would be enough to walk the code space.
//
// Replays flagged by IdempotencyValidator skip limiting entirely. Idle
// buckets are swept once per idle window.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RatePolicy is a token bucket: PerSecond tokens refill continuously up to
// Burst.
type RatePolicy struct {
	PerSecond float64
	Burst     int
}

// PerMinute is a convenience for slow policies such as code redemption.
func PerMinute(n float64, burst int) RatePolicy {
	return RatePolicy{PerSecond: n / 60, Burst: burst}
}

func (p RatePolicy) normalized() RatePolicy {
	if p.Burst <= 0 {
		p.Burst = 1
	}
	if p.PerSecond < 0 {
		p.PerSecond = 0
	}
	return p
}

// KeyFunc maps a request to the identity its buckets are keyed by.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated callers by user id ("user:<id>") and
// everyone else by client address ("ip:<addr>").
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := userIDFromCtx(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter holds the buckets for one router. Safe for concurrent use.
type RateLimiter struct {
	general RatePolicy
	routes  map[string]RatePolicy // "METHOD /full/path" -> policy
	keyFn   KeyFunc
	idle    time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter returns a limiter applying general to every request.
func NewRateLimiter(general RatePolicy, keyFn KeyFunc) *RateLimiter {
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		general:   general.normalized(),
		routes:    make(map[string]RatePolicy),
		keyFn:     keyFn,
		idle:      10 * time.Minute,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Limit adds a per-route policy for method and the route's full path (the
// pattern, e.g. "/api/v1/pets/claim"). It returns rl for chaining and must be
// called before the limiter serves traffic.
func (rl *RateLimiter) Limit(method, fullPath string, p RatePolicy) *RateLimiter {
	rl.routes[method+" "+fullPath] = p.normalized()
	return rl
}

// take draws one token from the bucket named key, creating it with p when
// absent. When the bucket is empty it reports how long until a token is due.
func (rl *RateLimiter) take(key string, p RatePolicy) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idle {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) >= rl.idle {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(p.PerSecond), p.Burst)}
		rl.buckets[key] = b
	}
	b.seen = now

	if b.lim.AllowN(now, 1) {
		return true, 0
	}
	wait := time.Second
	if p.PerSecond > 0 {
		wait = time.Duration(float64(time.Second) / p.PerSecond)
	}
	return false, wait
}

// IsRateBypass reports whether IdempotencyValidator marked the request as a
// replay that should not be limited.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the route policy (if any) and then the general policy.
// Denied requests get 429 with a Retry-After in whole seconds:
//
//	{"request_id": "...", "code": "too_many_requests", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		who := rl.keyFn(c)

		route := c.Request.Method + " " + c.FullPath()
		if p, ok := rl.routes[route]; ok {
			if allowed, wait := rl.take(route+"|"+who, p); !allowed {
				tooManyRequests(c, wait)
				return
			}
		}
		if allowed, wait := rl.take("*|"+who, rl.general); !allowed {
			tooManyRequests(c, wait)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, wait time.Duration) {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       CodeTooManyRequests,
		"message":    "rate limit exceeded",
	})
}
