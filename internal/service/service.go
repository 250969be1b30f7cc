// Package service implements the use cases behind the HTTP handlers: sessions
// and revocation, identity lookup, the cart ledger, inventory reservation and
// the order workflow.
package service

import (
	"context"
	"time"

	"go-gin-order-service/internal/domain"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Mailer delivers one message; see pkg/mailer for implementations.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// ownerOrAdmin 资源归属校验：本人或管理员
func ownerOrAdmin(caller *domain.User, ownerID, what string) error {
	if caller == nil {
		return domain.Unauthorized("authentication required")
	}
	if caller.ID == ownerID || caller.IsAdmin() {
		return nil
	}
	return domain.Forbidden("you do not have access to this " + what)
}
