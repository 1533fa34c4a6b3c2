package notification

import (
	"github.com/gin-gonic/gin"

	"go-orgflow/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", handler.List)
	}
}
