package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, user, pass, want string
	}{
		{"native dsn untouched", "u:p@tcp(db:3306)/shop?parseTime=true", "", "", "u:p@tcp(db:3306)/shop?parseTime=true"},
		{"url with overrides", "mysql://db:3306/shop", "root", "pw", "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true"},
		{"jdbc style", "jdbc:mysql://db:3306/shop?useSSL=false&serverTimezone=UTC&user=a&password=b", "", "",
			"a:b@tcp(db:3306)/shop?charset=utf8mb4&loc=UTC&parseTime=true&tls=false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "root:****@tcp(db:3306)/shop", maskDSN("root:secret@tcp(db:3306)/shop"))
	assert.Equal(t, "db:3306/shop", maskDSN("db:3306/shop"))
}

func TestNewGormSQLiteMigrate(t *testing.T) {
	t.Parallel()

	db, err := NewGorm(Opts{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "m.db"), LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "roles", "user_roles", "revoked_tokens", "products", "carts", "cart_lines", "orders", "order_lines"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewGormUnsupported(t *testing.T) {
	t.Parallel()

	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
