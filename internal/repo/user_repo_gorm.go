package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"go-gin-order-service/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *gorm.DB) *UserRepo { return &UserRepo{db: tx} }

// Create inserts u and grants roleNames in the same transaction.
func (r *UserRepo) Create(ctx context.Context, u *domain.User, roleNames ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		for _, name := range roleNames {
			var role domain.Role
			if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
				return fmt.Errorf("role %s: %w", name, err)
			}
			if err := tx.Create(&domain.UserRole{UserID: u.ID, RoleID: role.ID}).Error; err != nil {
				return err
			}
		}
		u.Roles = append([]string(nil), roleNames...)
		return nil
	})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// 查不到返回 (nil, nil)
func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, query, arg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	roles, err := r.RoleNames(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserRepo) RoleNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error) {
	var rows []domain.User
	err := r.db.WithContext(ctx).
		Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&rows).Error
	if err != nil {
		return false, false, err
	}
	var userTaken, emailTaken bool
	for _, u := range rows {
		userTaken = userTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}
	return userTaken, emailTaken, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	for i := range users {
		roles, err := r.RoleNames(ctx, users[i].ID)
		if err != nil {
			return nil, 0, err
		}
		users[i].Roles = roles
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete 同时清理角色关联
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
}

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

// Ensure creates the role if it does not exist yet.
func (r *RoleRepo) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role, domain.Role{Name: name}).Error
	if err != nil && IsDuplicateKey(err) {
		err = r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
