package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/server"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/transport/http/ez"
	mdw "go-gin-order-service/internal/transport/http/middleware"
	"go-gin-order-service/pkg/validation"
)

// Deps is what both engines need besides their modules.
type Deps struct {
	Log      *zap.Logger
	Tokens   *auth.TokenService
	Revoked  mdw.RevocationChecker
	Identity mdw.PrincipalResolver
	Modules  *Registry
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	// 前缀
	api := r.Group("/api/v1")
	e := ez.New(api, d.Log)
	d.Modules.MountAllAPI(ez.Routes{
		Public: e,
		Authed: e.Group("", mdw.RequireAuth()),
		Admin:  e.Group("", mdw.RequireAuth(), mdw.RequireRole(domain.RoleAdmin)),
	})
	return r
}

func newEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	validation.Init()
	r := server.NewRouter(d.Log)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(50, 100),
		mdw.ConcurrencyLimit(300, 2*time.Second),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second, d.Log),
		mdw.SimpleRecovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.AuthGate(d.Tokens, d.Revoked, d.Identity, d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
