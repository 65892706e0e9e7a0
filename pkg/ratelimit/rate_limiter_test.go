package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg *Config) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg)
}

func TestIsAllowedEnforcesLimit(t *testing.T) {
	limiter := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, ReserveRequests: 3, DefaultRequests: 10})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.IsAllowed(ctx, "user:1", "10.0.0.1", RateLimitTypeReserve)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 3-i-1, res.Remaining)
	}

	res, err := limiter.IsAllowed(ctx, "user:1", "10.0.0.1", RateLimitTypeReserve)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	other, err := limiter.IsAllowed(ctx, "user:2", "10.0.0.1", RateLimitTypeReserve)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "limits are tracked per identity")
}

func TestIsAllowedBypasses(t *testing.T) {
	ctx := context.Background()

	disabled := newLimiter(t, &Config{Enabled: false, WindowDuration: time.Minute, DefaultRequests: 0})
	res, err := disabled.IsAllowed(ctx, "ip:1", "1.1.1.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	whitelisted := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, DefaultRequests: 0, WhitelistedIPs: []string{"1.1.1.1"}})
	res, err = whitelisted.IsAllowed(ctx, "ip:1", "1.1.1.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		method, path string
		want         RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/admin/layouts/sessions", RateLimitTypeAdmin},
		{http.MethodGet, "/ws", RateLimitTypeRealtime},
		{http.MethodPost, "/api/v1/checkout", RateLimitTypeCheckout},
		{http.MethodPost, "/api/v1/events/:eventId/reservations", RateLimitTypeReserve},
		{http.MethodPut, "/api/v1/events/:id", RateLimitTypeAdmin},
		{http.MethodGet, "/api/v1/events/:eventId/sectors/:sectorId/seats", RateLimitTypePublic},
		{http.MethodGet, "/other", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), tc.path)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, CheckoutRequests: 1})

	r := gin.New()
	r.Use(Middleware(limiter))
	r.POST("/api/v1/checkout", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestMiddlewareIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, CheckoutRequests: 1})

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(Middleware(limiter))
	r.POST("/api/v1/checkout", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		req.Header.Set("X-Forwarded-For", spoofed)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusAccepted, http.StatusTooManyRequests}, codes)
}
