package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-orgflow/internal/department"
	"go-orgflow/internal/employee"
	"go-orgflow/internal/exits"
	"go-orgflow/internal/hierarchy"
	"go-orgflow/internal/leave"
	"go-orgflow/internal/messaging/kafka"
	"go-orgflow/internal/middleware"
	"go-orgflow/internal/notification"
	"go-orgflow/internal/rbac"
	"go-orgflow/internal/rbac/infra"
	"go-orgflow/internal/shared/counter"
	"go-orgflow/internal/teamjoin"
	"go-orgflow/internal/visibility"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	visibilityRepo := visibility.NewRepository(gormDB)
	teamJoinRepo := teamjoin.NewRepository(gormDB)
	exitRepo := exits.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	scoper := visibility.NewScoper(visibilityRepo)
	hierarchyService := hierarchy.NewService(employeeRepo, rdb)
	departmentService := department.NewService(departmentRepo)
	teamJoinService := teamjoin.NewService(db, teamJoinRepo, employeeRepo, outboxRepo, hierarchyService)
	exitService := exits.NewService(db, exitRepo, employeeRepo, scoper, counterRepo, outboxRepo, hierarchyService)
	leaveService := leave.NewService(db, leaveRepo, scoper)
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	hierarchyHandler := hierarchy.NewHandler(hierarchyService)
	departmentHandler := department.NewHandler(departmentService)
	teamJoinHandler := teamjoin.NewHandler(teamJoinService)
	exitHandler := exits.NewHandler(exitService)
	leaveHandler := leave.NewHandler(leaveService)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(rate.Limit(50), 100),
		middleware.Idempotency(rdb),
	)
	{
		hierarchy.RegisterRoutes(api, hierarchyHandler, rbacService)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		teamjoin.RegisterRoutes(api, teamJoinHandler, rbacService)
		exits.RegisterRoutes(api, exitHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
