package hierarchy

import (
	"github.com/gin-gonic/gin"

	"go-orgflow/internal/middleware"
	"go-orgflow/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	h := r.Group("/hierarchy")
	h.Use(middleware.AuthMiddleware())
	{
		h.GET("", middleware.RBACAuthorize(rbacService, "hierarchy", "read"), handler.GetOrgChart)
		h.GET("/stats", middleware.RBACAuthorize(rbacService, "hierarchy", "read"), handler.GetStats)
	}
}
