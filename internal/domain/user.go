package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User 即请求链路里的 principal；Roles 由 user_roles 关联表加载，不落列
type User struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`
	Username              string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email                 string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash          string     `gorm:"size:100;not null" json:"-"`
	Enabled               bool       `gorm:"not null;default:false" json:"enabled"`
	VerificationCode      *string    `gorm:"size:6" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`

	Roles []string `gorm:"-" json:"roles"`
}

func (User) TableName() string { return "users" }

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:32;not null" json:"name"`
}

func (Role) TableName() string { return "roles" }

// IsDefault reports whether the role is one of the built-in roles that must never be removed.
func (r Role) IsDefault() bool { return r.Name == RoleUser || r.Name == RoleAdmin }

// UserRole is the explicit principal<->role join row.
type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	RoleID uint   `gorm:"primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }

type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (RevokedToken) TableName() string { return "revoked_tokens" }

type UserRepository interface {
	Create(ctx context.Context, u *User, roleNames ...string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
