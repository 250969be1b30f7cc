// Package handler holds the HTTP modules. Each module mounts its actions on
// the route groups it is given; authorization beyond "logged in" and
// "is admin" is decided by the services.
package handler

import (
	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/service"
)

// caller 取 AuthGate 绑定的 principal
func caller(c *gin.Context, identity *service.IdentityResolver) (*domain.User, error) {
	return identity.FromContext(c.Request.Context())
}
