package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/cache"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
)

const (
	principalKeyPrefix = "principal:"
	principalTTL       = time.Minute
)

// IdentityResolver loads principals with their roles.
type IdentityResolver struct {
	users *repo.UserRepo
	cache *cache.Cache
	log   *zap.Logger
}

func NewIdentityResolver(users *repo.UserRepo, c *cache.Cache, log *zap.Logger) *IdentityResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityResolver{users: users, cache: c, log: log}
}

func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*domain.User, error) {
	load := func(ctx context.Context) (*domain.User, error) {
		u, err := r.users.FindByID(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("load principal: %w", err)
		}
		if u == nil {
			return nil, domain.NotFound("user not found")
		}
		return u, nil
	}
	if r.cache == nil {
		return load(ctx)
	}
	u, err := cache.GetOrLoadJSON(r.cache, ctx, principalKeyPrefix+subject, principalTTL, load)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

// FromContext returns the principal bound to ctx by the auth gate.
func (r *IdentityResolver) FromContext(ctx context.Context) (*domain.User, error) {
	u, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.Unauthorized("authentication required")
	}
	return u, nil
}

// Invalidate drops the cached principal after its state changed.
func (r *IdentityResolver) Invalidate(ctx context.Context, userID string) {
	if r == nil || r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, principalKeyPrefix+userID); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn("principal cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
