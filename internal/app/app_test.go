package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-order-service/internal/core/config"
	"go-gin-order-service/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWT: config.JWT{Secret: "s", Issuer: "test", AccessTokenTTLMin: 60},
		DB: config.DB{
			Driver:      "sqlite",
			DSN:         filepath.Join(t.TempDir(), "app.db"),
			AutoMigrate: true,
			LogLevel:    "silent",
		},
		Mail: config.Mail{Driver: "log"},
		Seed: config.Seed{AdminUsername: "admin", AdminEmail: "admin@email.com", AdminPassword: "password"},
	}
}

func TestBootstrapSeedsAdmin(t *testing.T) {
	ctx := context.Background()
	a, closeFn, err := Bootstrap(ctx, testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	s, err := a.Auth.Login(ctx, "admin@email.com", "password")
	require.NoError(t, err)
	assert.True(t, s.User.HasRole(domain.RoleAdmin))
	assert.NotEmpty(t, s.Token)
}

func TestBootstrapWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	a, closeFn, err := Bootstrap(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	s, err := a.Auth.Login(ctx, "admin@email.com", "password")
	require.NoError(t, err)
	require.NoError(t, a.Auth.Logout(ctx, s.Token))

	claims, err := a.Tokens.Verify(s.Token)
	require.NoError(t, err)
	assert.True(t, mr.Exists("revoked:"+claims.ID))
}

func TestBootstrapRejectsUnknownMailDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mail.Driver = "fax"
	_, closeFn, err := Bootstrap(context.Background(), cfg, zap.NewNop())
	closeFn()
	assert.Error(t, err)
}
