package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/cache"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/testutil"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "u1", domain.RoleUser, domain.RoleAdmin)

	u, err := e.identity.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.ElementsMatch(t, []string{domain.RoleUser, domain.RoleAdmin}, u.Roles)

	_, err = e.identity.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveCachedAndInvalidated(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	e := newEnv(t, c)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "u1", domain.RoleUser)

	u, err := e.identity.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Enabled)
	assert.True(t, mr.Exists("principal:u1"))

	disabled, err := e.admin.Disable(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	assert.False(t, mr.Exists("principal:u1"))

	u, err = e.identity.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.Enabled)
	assert.Equal(t, []string{domain.RoleUser}, u.Roles)

	_, err = e.identity.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("principal:ghost"), "misses are not cached")
}

func TestFromContext(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)

	_, err := e.identity.FromContext(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	u := &domain.User{ID: "u1"}
	got, err := e.identity.FromContext(auth.WithPrincipal(context.Background(), u))
	require.NoError(t, err)
	assert.Same(t, u, got)
}
