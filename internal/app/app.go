// Package app wires repositories, services and HTTP modules together; both
// servers and the end-to-end tests build on it.
package app

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/cache"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/internal/service"
	"go-gin-order-service/internal/transport/http/handler"
	"go-gin-order-service/internal/transport/http/router"
	"go-gin-order-service/pkg/utils"
)

type Deps struct {
	DB            *gorm.DB
	Cache         *cache.Cache // 可为 nil
	Tokens        *auth.TokenService
	Mailer        service.Mailer
	Hasher        service.PasswordHasher
	Clock         service.Clock
	SweepInterval time.Duration
	Log           *zap.Logger
}

type App struct {
	Log      *zap.Logger
	Tokens   *auth.TokenService
	Products *repo.ProductRepo
	Revoked  *service.RevocationStore
	Identity *service.IdentityResolver
	Auth     *service.AuthService
	Carts    *service.CartLedger
	Orders   *service.OrderWorkflow
	Users    *service.UserAdmin
	Seeder   *service.Seeder
	Sweeper  *service.RevocationSweeper
	Modules  *router.Registry
}

func New(d Deps) *App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Hasher == nil {
		d.Hasher = utils.BcryptHasher{}
	}

	userRepo := repo.NewUserRepo(d.DB)
	cartRepo := repo.NewCartRepo(d.DB)
	products := repo.NewProductRepo(d.DB)

	a := &App{Log: d.Log, Tokens: d.Tokens, Products: products}
	a.Revoked = service.NewRevocationStore(repo.NewRevokedTokenRepo(d.DB), d.Cache, d.Log, d.Clock)
	a.Identity = service.NewIdentityResolver(userRepo, d.Cache, d.Log)
	a.Auth = service.NewAuthService(service.AuthDeps{
		Users:    userRepo,
		Tokens:   d.Tokens,
		Revoked:  a.Revoked,
		Identity: a.Identity,
		Hasher:   d.Hasher,
		Mailer:   d.Mailer,
		Clock:    d.Clock,
		Log:      d.Log,
	})
	guard := service.NewInventoryGuard(products)
	a.Carts = service.NewCartLedger(d.DB, cartRepo, guard)
	a.Orders = service.NewOrderWorkflow(d.DB, cartRepo, repo.NewOrderRepo(d.DB), guard, d.Clock, d.Log)
	a.Users = service.NewUserAdmin(userRepo, a.Identity)
	a.Seeder = service.NewSeeder(repo.NewRoleRepo(d.DB), userRepo, d.Hasher, d.Log)
	a.Sweeper = service.NewRevocationSweeper(a.Revoked, d.SweepInterval, d.Log, d.Clock)

	a.Modules = router.NewRegistry(
		handler.NewAuthHandler(a.Auth, a.Identity),
		handler.NewCartHandler(a.Carts, a.Identity),
		handler.NewOrderHandler(a.Orders, a.Identity),
		handler.NewUserHandler(a.Users),
	)
	return a
}

func (a *App) RouterDeps() router.Deps {
	return router.Deps{
		Log:      a.Log,
		Tokens:   a.Tokens,
		Revoked:  a.Revoked,
		Identity: a.Identity,
		Modules:  a.Modules,
	}
}
