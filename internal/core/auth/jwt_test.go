package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-order-service/internal/domain"
)

func newTestService(now *time.Time) *TokenService {
	return &TokenService{
		Secret: []byte("test-secret"),
		Issuer: "order-service",
		TTL:    24 * time.Hour,
		Now:    func() time.Time { return *now },
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	tok, exp, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.True(t, now.Add(24*time.Hour).Equal(exp))

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, now.Equal(claims.IssuedAt.Time))

	id, err := svc.TokenID(tok)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, id)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	tok, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	now = now.Add(23 * time.Hour)
	_, err = svc.Verify(tok)
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Second)
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := newTestService(&now)
	tok, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	other := newTestService(&now)
	other.Secret = []byte("another-secret")
	forged, _, err := other.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	badSig := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID: "x", Subject: "user-1", Issuer: "order-service", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, bad := range map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  forged,
		"bad signature": badSig,
		"alg none":      noneTok,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(bad)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenIDMalformed(t *testing.T) {
	t.Parallel()

	now := time.Now()
	_, err := newTestService(&now).TokenID("a.b")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	u := &domain.User{ID: "u1"}
	got, ok := PrincipalFrom(WithPrincipal(context.Background(), u))
	require.True(t, ok)
	assert.Same(t, u, got)
}
