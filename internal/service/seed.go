package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/pkg/utils"
)

type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// Seeder creates the built-in roles and the bootstrap admin.
type Seeder struct {
	roles  *repo.RoleRepo
	users  *repo.UserRepo
	hasher PasswordHasher
	log    *zap.Logger
}

func NewSeeder(roles *repo.RoleRepo, users *repo.UserRepo, hasher PasswordHasher, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{roles: roles, users: users, hasher: hasher, log: log}
}

// EnsureDefaults is idempotent.
func (s *Seeder) EnsureDefaults(ctx context.Context, admin AdminAccount) error {
	for _, name := range []string{domain.RoleUser, domain.RoleAdmin} {
		if _, err := s.roles.Ensure(ctx, name); err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	if admin.Email == "" {
		return nil
	}
	existing, err := s.users.FindByEmail(ctx, admin.Email)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, u, domain.RoleAdmin); err != nil {
		if repo.IsDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("default admin created", zap.String("email", u.Email))
	return nil
}
