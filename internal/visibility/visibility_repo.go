package visibility

import (
	"context"

	"gorm.io/gorm"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/tenant"
)

//go:generate mockgen -source=visibility_repo.go -destination=mock/visibility_repo_mock.go -package=mock
type Repository interface {
	FindDirectReportIDs(ctx context.Context, companyID string, managerID string) ([]string, error)
	HasManager(ctx context.Context, companyID string, employeeID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindDirectReportIDs(ctx context.Context, companyID string, managerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("manager_id = ?", managerID).
		Pluck("id::text", &ids).Error
	return ids, err
}

func (r *repository) HasManager(ctx context.Context, companyID string, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", employeeID).
		Where("manager_id IS NOT NULL").
		Count(&count).Error
	return count > 0, err
}
