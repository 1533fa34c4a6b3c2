package teamjoin

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
	requests := r.Group("/team-join-requests")
	requests.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "team_join", "read"), handler.List)
		requests.POST("", middleware.RBACAuthorize(rbacService, "team_join", "propose"), handler.Propose)
		requests.POST("/:id/respond", middleware.RBACAuthorize(rbacService, "team_join", "respond"), handler.Respond)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "team_join", "propose"), handler.Cancel)
	}
}
