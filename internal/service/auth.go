package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/metrics"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/pkg/utils"
)

const (
	signupCodeTTL = 5 * time.Minute
	resendCodeTTL = time.Hour
)

type AuthService struct {
	users    *repo.UserRepo
	tokens   *auth.TokenService
	revoked  *RevocationStore
	identity *IdentityResolver
	hasher   PasswordHasher
	mail     notifier
	clock    Clock
	log      *zap.Logger
}

type AuthDeps struct {
	Users    *repo.UserRepo
	Tokens   *auth.TokenService
	Revoked  *RevocationStore
	Identity *IdentityResolver
	Hasher   PasswordHasher
	Mailer   Mailer
	Clock    Clock
	Log      *zap.Logger
}

func NewAuthService(d AuthDeps) *AuthService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &AuthService{
		users: d.Users, tokens: d.Tokens, revoked: d.Revoked, identity: d.Identity,
		hasher: d.Hasher, mail: notifier{mailer: d.Mailer, log: d.Log}, clock: d.Clock, log: d.Log,
	}
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Signup creates a disabled ROLE_USER account and mails its verification code.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	username, email = strings.TrimSpace(username), normalizeEmail(email)
	userTaken, emailTaken, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if userTaken {
		return nil, domain.AlreadyExists("username is already taken")
	}
	if emailTaken {
		return nil, domain.AlreadyExists("email is already registered")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := utils.NewVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("verification code: %w", err)
	}
	exp := s.clock.now().Add(signupCodeTTL)
	u := &domain.User{
		ID:                    utils.NewID(),
		Username:              username,
		Email:                 email,
		PasswordHash:          hash,
		Enabled:               false,
		VerificationCode:      &code,
		VerificationExpiresAt: &exp,
	}
	if err := s.users.Create(ctx, u, domain.RoleUser); err != nil {
		// 并发注册兜底
		if repo.IsDuplicateKey(err) {
			return nil, domain.AlreadyExists("username or email is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.sendCode(u.Email, code)
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	if !u.Enabled {
		return nil, domain.Forbidden("account is not verified or has been disabled")
	}
	tok, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	if u.VerificationCode == nil {
		return domain.AlreadyExists("account is already verified")
	}
	if u.VerificationExpiresAt == nil || s.clock.now().After(*u.VerificationExpiresAt) {
		return domain.Forbidden("verification code has expired")
	}
	if *u.VerificationCode != strings.TrimSpace(code) {
		return domain.Forbidden("invalid verification code")
	}
	u.Enabled = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("enable user: %w", err)
	}
	s.identity.Invalidate(ctx, u.ID)
	return nil
}

func (s *AuthService) Resend(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	if u.Enabled {
		return domain.AlreadyExists("account is already verified")
	}
	code, err := utils.NewVerificationCode()
	if err != nil {
		return fmt.Errorf("verification code: %w", err)
	}
	exp := s.clock.now().Add(resendCodeTTL)
	u.VerificationCode = &code
	u.VerificationExpiresAt = &exp
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	s.sendCode(u.Email, code)
	return nil
}

// Logout revokes token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return domain.Unauthorized("token has expired")
		}
		return domain.Unauthorized("invalid token")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	metrics.TokensRevoked.Inc()
	s.log.Info("token revoked", zap.String("user_id", claims.Subject), zap.String("jti", claims.ID))
	return nil
}

func (s *AuthService) sendCode(to, code string) {
	s.mail.send(to, "Email verification", "Your verification code is "+code)
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
