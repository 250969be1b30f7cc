// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"go-gin-order-service/internal/core/database"
	"go-gin-order-service/internal/domain"
)

// NewDB opens a migrated sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedRoles creates the two default roles.
func SeedRoles(t testing.TB, db *gorm.DB) {
	t.Helper()
	for _, name := range []string{domain.RoleUser, domain.RoleAdmin} {
		if err := db.Create(&domain.Role{Name: name}).Error; err != nil {
			t.Fatalf("seed role %s: %v", name, err)
		}
	}
}

// CreateUser inserts an enabled user holding roles.
func CreateUser(t testing.TB, db *gorm.DB, id string, roles ...string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Username: id, Email: id + "@example.com", PasswordHash: "x", Enabled: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, name := range roles {
		var r domain.Role
		if err := db.Where("name = ?", name).FirstOrCreate(&r, domain.Role{Name: name}).Error; err != nil {
			t.Fatalf("role %s: %v", name, err)
		}
		if err := db.Create(&domain.UserRole{UserID: id, RoleID: r.ID}).Error; err != nil {
			t.Fatalf("grant %s: %v", name, err)
		}
	}
	u.Roles = roles
	return u
}

func CreateProduct(t testing.TB, db *gorm.DB, id string, priceCents int64, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{ID: id, Name: id, PriceCents: priceCents, Stock: stock}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func Stock(t testing.TB, db *gorm.DB, productID string) int {
	t.Helper()
	var p domain.Product
	if err := db.WithContext(context.Background()).First(&p, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock
}
