package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/metrics"
	"go-gin-order-service/internal/domain"
	resp "go-gin-order-service/internal/transport/http/response"
)

// gin.Context keys set by AuthGate
const (
	KeyToken     = "token"
	KeyPrincipal = "principal"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (*domain.User, error)
}

// AuthGate binds the caller behind a Bearer token to the request context.
// Requests without a Bearer header pass through anonymously; route groups
// decide with RequireAuth whether that is acceptable.
func AuthGate(tokens *auth.TokenService, revoked RevocationChecker, identity PrincipalResolver, l *zap.Logger) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := auth.PrincipalFrom(ctx); ok {
			c.Next()
			return
		}
		tok, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		// 先查黑名单，再验签
		jti, err := tokens.TokenID(tok)
		if err != nil {
			reject(c, http.StatusUnauthorized, "invalid or expired token", "invalid")
			return
		}
		isRevoked, err := revoked.IsRevoked(ctx, jti)
		if err != nil {
			l.Error("revocation lookup failed", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		if isRevoked {
			reject(c, http.StatusUnauthorized, "token is blacklisted", "revoked")
			return
		}

		claims, err := tokens.Verify(tok)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			reject(c, http.StatusUnauthorized, "invalid or expired token", reason)
			return
		}

		u, err := identity.Resolve(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				reject(c, http.StatusUnauthorized, "user not found", "unknown_user")
				return
			}
			l.Error("resolve principal failed", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		if !u.Enabled {
			reject(c, http.StatusForbidden, "account is disabled", "disabled")
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(ctx, u))
		c.Set(KeyToken, tok)
		c.Set(KeyPrincipal, u)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.PrincipalFrom(c.Request.Context()); !ok {
			reject(c, http.StatusUnauthorized, "authentication required", "anonymous")
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers missing role; use after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := auth.PrincipalFrom(c.Request.Context())
		if !ok {
			reject(c, http.StatusUnauthorized, "authentication required", "anonymous")
			return
		}
		if !u.HasRole(role) {
			reject(c, http.StatusForbidden, "forbidden", "role")
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

func reject(c *gin.Context, status int, msg, reason string) {
	metrics.AuthRejections.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(status, resp.Error(status, msg))
}
