package service

import (
	"context"
	"fmt"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
)

// UserAdmin backs the admin-only user endpoints. Admin accounts are never
// disabled or deleted through it.
type UserAdmin struct {
	users    *repo.UserRepo
	identity *IdentityResolver
}

func NewUserAdmin(users *repo.UserRepo, identity *IdentityResolver) *UserAdmin {
	return &UserAdmin{users: users, identity: identity}
}

func (s *UserAdmin) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	users, total, err := s.users.List(ctx, offset, limit, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *UserAdmin) Enable(ctx context.Context, id string) (*domain.User, error) {
	return s.setEnabled(ctx, id, true)
}

func (s *UserAdmin) Disable(ctx context.Context, id string) (*domain.User, error) {
	return s.setEnabled(ctx, id, false)
}

func (s *UserAdmin) setEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, domain.Forbidden("admin accounts cannot be modified")
	}
	u.Enabled = enabled
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.identity.Invalidate(ctx, u.ID)
	return u, nil
}

func (s *UserAdmin) Delete(ctx context.Context, id string) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return domain.Forbidden("admin accounts cannot be deleted")
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.identity.Invalidate(ctx, u.ID)
	return nil
}

func (s *UserAdmin) load(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}
