package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/ratelimit"
)

// DefaultBodyLimit bounds request bodies at 1MB. The MCP stdio transport
// applies its own, larger cap of 10MB to a single line
// (internal/mcpadapter/server.go).
const DefaultBodyLimit = 1 << 20 // 1MB

// APIKeyAuthMiddleware checks for a valid API key. The health endpoint is
// exempt. No-op if apiKey is empty.
func APIKeyAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.Request.URL.Path == "/api/v1/health" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] == apiKey {
				c.Next()
				return
			}
		}
		if c.GetHeader("X-API-Key") == apiKey {
			c.Next()
			return
		}

		UnauthorizedError(c, "invalid or missing API key")
		c.Abort()
	}
}

// routeToToolName maps a REST route back onto the MCP tool name it mirrors,
// so per-tool overrides in pkg/config's RateLimitConfig.Tools apply to REST
// calls too. Only the search, related, similar, item-creation and relations
// routes are mapped; every other route is limited under the key "default".
func routeToToolName(path, method string) string {
	switch {
	case strings.Contains(path, "/search"):
		return "search_items"
	case strings.Contains(path, "/related"):
		return "get_related_items"
	case strings.Contains(path, "/similar"):
		return "find_similar_items"
	case method == http.MethodPost && strings.HasSuffix(path, "/items"):
		return "create_item"
	case method == http.MethodDelete && strings.Contains(path, "/relations"):
		return "remove_relation"
	case strings.Contains(path, "/relations"):
		return "add_relations"
	default:
		return "default"
	}
}

// RateLimitMiddleware applies limiter.Allow keyed by the mirrored tool name.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result := limiter.Allow(routeToToolName(c.Request.URL.Path, c.Request.Method))
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			TooManyRequestsError(c, fmt.Sprintf("rate limit exceeded for %s, retry after %ds", result.LimitType, retryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}

// MaxBodySizeMiddleware rejects request bodies larger than limit bytes.
func MaxBodySizeMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
