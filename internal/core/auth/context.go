package auth

import (
	"context"

	"go-gin-order-service/internal/domain"
)

type principalKey struct{}

// WithPrincipal binds the authenticated user to ctx.
func WithPrincipal(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

func PrincipalFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(principalKey{}).(*domain.User)
	return u, ok && u != nil
}
