package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	assert.Equal(t, "ip:203.0.113.9", KeyByUserOrIP()(c))

	c.Set(ctxKeyUserID, "u123")
	assert.Equal(t, "user:u123", KeyByUserOrIP()(c))
}

func TestRatePolicy_Normalized(t *testing.T) {
	p := RatePolicy{PerSecond: -3, Burst: 0}.normalized()
	assert.Equal(t, RatePolicy{PerSecond: 0, Burst: 1}, p)

	m := PerMinute(30, 4)
	assert.InDelta(t, 0.5, m.PerSecond, 1e-9)
	assert.Equal(t, 4, m.Burst)
}

func TestRateLimiter_TakeRefillsWithClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RatePolicy{PerSecond: 1, Burst: 2}, nil)
	rl.now = func() time.Time { return now }

	p := rl.general
	for i := 0; i < 2; i++ {
		ok, _ := rl.take("k", p)
		require.True(t, ok, "burst token %d", i)
	}
	ok, wait := rl.take("k", p)
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(time.Second)
	ok, _ = rl.take("k", p)
	assert.True(t, ok, "one token refilled after a second")

	// buckets are independent per key
	ok, _ = rl.take("other", p)
	assert.True(t, ok)
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RatePolicy{PerSecond: 1, Burst: 1}, nil)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now
	rl.idle = time.Minute

	rl.take("stale", rl.general)
	now = now.Add(30 * time.Second)
	rl.take("fresh", rl.general)

	now = now.Add(45 * time.Second)
	rl.take("trigger", rl.general)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "stale")
	assert.Contains(t, rl.buckets, "fresh")
	assert.Contains(t, rl.buckets, "trigger")
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.False(t, IsRateBypass(c))
	c.Set(ctxKeyRateBypass, true)
	assert.True(t, IsRateBypass(c))
	c.Set(ctxKeyRateBypass, "yes")
	assert.False(t, IsRateBypass(c), "non-bool reads as false")
}

func newLimitedRouter(rl *RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header("X-Request-ID", "rid-1"); c.Next() })
	r.Use(pre...)
	r.Use(rl.Handler())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/pets", ok)
	r.POST("/pets/claim", ok)
	r.GET("/vaccine-qr/status", ok)
	return r
}

func hit(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRateLimiter_Handler_DeniesWith429(t *testing.T) {
	rl := NewRateLimiter(RatePolicy{PerSecond: 1, Burst: 1}, nil)
	r := newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, hit(r, http.MethodGet, "/pets").Code)

	w := hit(r, http.MethodGet, "/pets")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rid-1", body["request_id"])
	assert.Equal(t, "too_many_requests", body["code"])
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimiter_RoutePolicyIsTighter(t *testing.T) {
	rl := NewRateLimiter(RatePolicy{PerSecond: 100, Burst: 100}, nil).
		Limit(http.MethodPost, "/pets/claim", PerMinute(6, 2))
	r := newLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/pets/claim").Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/pets/claim").Code)

	w := hit(r, http.MethodPost, "/pets/claim")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"), "6/min refills one token every 10s")

	// the general budget is untouched by the claim bucket
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "/vaccine-qr/status").Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "/pets").Code)
}

func TestRateLimiter_ReplayBypassesLimits(t *testing.T) {
	rl := NewRateLimiter(RatePolicy{PerSecond: 1, Burst: 1}, nil).
		Limit(http.MethodPost, "/pets/claim", PerMinute(1, 1))
	r := newLimitedRouter(rl, func(c *gin.Context) {
		if c.GetHeader(HeaderIdempotencyKey) != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})

	require.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/pets/claim").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodPost, "/pets/claim").Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pets/claim", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
