package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/domain"
	resp "go-library-api/internal/transport/http/response"
)

const keyActor = "actor"

// TokenResolver maps a presented bearer token to its user; (nil, nil)
// means the token is unknown.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// AuthToken authenticates every request before any route logic runs.
// The actor is stored in the request context as an explicit object,
// never in package-level state.
func AuthToken(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			resp.AbortUnauthenticated(c)
			return
		}
		u, err := resolver.ResolveToken(c.Request.Context(), token)
		if err != nil || u == nil {
			resp.AbortUnauthenticated(c)
			return
		}
		c.Set(keyActor, u)
		c.Next()
	}
}

// extractToken supports "Bearer TOKEN" and, like the upstream clients
// expect, a bare token value.
func extractToken(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(header)
}

// CurrentUser returns the authenticated actor set by AuthToken.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(keyActor); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
