package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"boxoffice/internal/shared/utils/response"
	"boxoffice/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware limits requests per authenticated user, or per client IP for anonymous callers.
// Client IPs come from gin's ClientIP, so forwarding headers count only from trusted proxies.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		identity := "ip:" + ip
		if userID := c.GetString("user_id"); userID != "" {
			identity = "user:" + userID
		}

		result, err := rateLimiter.IsAllowed(c.Request.Context(), identity, ip, getRateLimitType(c.Request.Method, c.FullPath()))
		if err != nil {
			response.RespondJSON(c, response.StatusError, http.StatusInternalServerError, "Rate limit check failed", nil, nil)
			c.Abort()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if result.Allowed {
			c.Next()
			return
		}

		logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), ip, c.FullPath())
		response.RespondJSON(c, response.StatusError, http.StatusTooManyRequests, "Rate limit exceeded", nil, gin.H{
			"limit":      result.Limit,
			"reset_time": result.ResetTime,
		})
		c.Abort()
	}
}

type routeRule struct {
	match func(method, path string) bool
	limit RateLimitType
}

// routeRules are checked in order; the first match wins
var routeRules = []routeRule{
	{func(_, p string) bool { return strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/metrics") }, RateLimitTypeHealth},
	{func(_, p string) bool { return strings.Contains(p, "/admin/") }, RateLimitTypeAdmin},
	{func(_, p string) bool { return strings.HasSuffix(p, "/ws") }, RateLimitTypeRealtime},
	{func(_, p string) bool { return strings.Contains(p, "/checkout") }, RateLimitTypeCheckout},
	{func(_, p string) bool { return strings.Contains(p, "/reservations") }, RateLimitTypeReserve},
	{func(m, p string) bool { return strings.Contains(p, "/events") && m != http.MethodGet }, RateLimitTypeAdmin},
	{func(_, p string) bool { return strings.Contains(p, "/events") || strings.Contains(p, "/auth/") }, RateLimitTypePublic},
}

func getRateLimitType(method, path string) RateLimitType {
	for _, r := range routeRules {
		if r.match(method, path) {
			return r.limit
		}
	}
	return RateLimitTypeDefault
}
