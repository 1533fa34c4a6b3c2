package exits

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
	exits := r.Group("/exits")
	exits.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		exits.POST("", middleware.RBACAuthorize(rbacService, "exit", "create"), handler.Create)
		exits.GET("", middleware.RBACAuthorize(rbacService, "exit", "read"), handler.GetAll)
		exits.GET("/:id", middleware.RBACAuthorize(rbacService, "exit", "read"), handler.GetByID)
		exits.POST("/:id/transition", middleware.RBACAuthorize(rbacService, "exit", "transition"), handler.Transition)
		exits.PATCH("/clearance-tasks/:taskId", middleware.RBACAuthorize(rbacService, "exit", "clearance"), handler.UpdateClearanceTask)
	}
}
