package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/cache"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/internal/testutil"
	"go-gin-order-service/pkg/utils"
)

type sentMail struct{ To, Subject, Body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

func (m *fakeMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	db       *gorm.DB
	now      time.Time
	clock    Clock
	tokens   *auth.TokenService
	mailer   *fakeMailer
	users    *repo.UserRepo
	products *repo.ProductRepo
	revoked  *RevocationStore
	identity *IdentityResolver
	auth     *AuthService
	carts    *CartLedger
	guard    *InventoryGuard
	orders   *OrderWorkflow
	admin    *UserAdmin
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func newEnv(t *testing.T, c *cache.Cache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedRoles(t, db)

	e := &testEnv{db: db, now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), mailer: &fakeMailer{}}
	e.clock = func() time.Time { return e.now }
	e.tokens = &auth.TokenService{Secret: []byte("secret"), Issuer: "test", TTL: 24 * time.Hour, Now: e.clock}

	e.users = repo.NewUserRepo(db)
	e.products = repo.NewProductRepo(db)
	cartRepo := repo.NewCartRepo(db)

	e.revoked = NewRevocationStore(repo.NewRevokedTokenRepo(db), c, nil, e.clock)
	e.identity = NewIdentityResolver(e.users, c, nil)
	e.auth = NewAuthService(AuthDeps{
		Users: e.users, Tokens: e.tokens, Revoked: e.revoked, Identity: e.identity,
		Hasher: utils.BcryptHasher{Cost: bcrypt.MinCost}, Mailer: e.mailer, Clock: e.clock,
	})
	e.guard = NewInventoryGuard(e.products)
	e.carts = NewCartLedger(db, cartRepo, e.guard)
	e.orders = NewOrderWorkflow(db, cartRepo, repo.NewOrderRepo(db), e.guard, e.clock, nil)
	e.admin = NewUserAdmin(e.users, e.identity)
	return e
}
