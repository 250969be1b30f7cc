package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/transport/http/ez"
	mdw "go-gin-order-service/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1", mdw.RequireAuth(), mdw.RequireRole(domain.RoleAdmin))
	d.Modules.MountAllAdmin(ez.New(admin, d.Log))
	return r
}
