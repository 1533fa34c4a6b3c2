package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"go-orgflow/internal/tenant"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindDirectReports(ctx context.Context, companyID string, managerID string) ([]Employee, error)
	// AssignManager writes a hierarchy edge only while the employee is
	// still unmanaged; 0 affected rows means another edge landed first.
	AssignManager(ctx context.Context, companyID string, id string, managerID string) (int64, error)
	SetEmploymentStatus(ctx context.Context, companyID string, id string, status string) error
	SetUserAccountStatus(ctx context.Context, companyID string, employeeID string, status string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds writes to an outer transaction so hierarchy edges and
// workflow status move together or not at all.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Department").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Department").
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) FindDirectReports(ctx context.Context, companyID string, managerID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("manager_id = ?", managerID).
		Find(&empls).Error
	return empls, err
}

func (r *repository) AssignManager(ctx context.Context, companyID string, id string, managerID string) (int64, error) {
	if r.tx != nil {
		query := `UPDATE employees SET manager_id = $1, updated_at = now() WHERE company_id = $2 AND id = $3 AND manager_id IS NULL AND deleted_at IS NULL`
		res, err := r.tx.ExecContext(ctx, query, managerID, companyID, id)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	res := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND manager_id IS NULL", id).
		Update("manager_id", managerID)
	return res.RowsAffected, res.Error
}

func (r *repository) SetEmploymentStatus(ctx context.Context, companyID string, id string, status string) error {
	if r.tx != nil {
		query := `UPDATE employees SET employment_status = $1, updated_at = now() WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL`
		_, err := r.tx.ExecContext(ctx, query, status, companyID, id)
		return err
	}
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("employment_status", status).Error
}

// SetUserAccountStatus flips the linked identity record. The users table is
// owned by the identity service; this is the only write this engine does
// against it, and only while completing an exit.
func (r *repository) SetUserAccountStatus(ctx context.Context, companyID string, employeeID string, status string) error {
	query := `
		UPDATE users SET status = $1, updated_at = now()
		WHERE id = (
			SELECT user_id FROM employees
			WHERE company_id = $2 AND id = $3 AND user_id IS NOT NULL
		)
	`
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query, status, companyID, employeeID)
		return err
	}
	return r.db.WithContext(ctx).Exec(
		"UPDATE users SET status = ?, updated_at = now() WHERE id = (SELECT user_id FROM employees WHERE company_id = ? AND id = ? AND user_id IS NOT NULL)",
		status, companyID, employeeID,
	).Error
}
