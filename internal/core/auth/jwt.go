package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token malformed or signature invalid")
)

const DefaultTTL = 24 * time.Hour

// Claims: sub = 用户 ID，jti = 吊销用的 token ID
type Claims struct {
	jwt.RegisteredClaims
}

type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time // 测试注入时钟；nil 时用 time.Now
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTTL
	}
	return s.TTL
}

// Issue signs a token for subject and returns it with its expiry.
func (s *TokenService) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl())
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" || c.ID == "" {
		return nil, ErrTokenInvalid
	}
	return c, nil
}

// TokenID reads the jti without checking the signature, so revocation can be
// checked before the token is verified.
func (s *TokenService) TokenID(tokenStr string) (string, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.ID == "" {
		return "", ErrTokenInvalid
	}
	return c.ID, nil
}
