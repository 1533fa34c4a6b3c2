package teamjoin

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"go-orgflow/internal/tenant"
)

//go:generate mockgen -source=teamjoin_repo.go -destination=mock/teamjoin_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *TeamJoinRequest) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*TeamJoinRequest, error)
	FindAllByEmployee(ctx context.Context, companyID string, employeeID string) ([]TeamJoinRequest, error)
	FindAllByManager(ctx context.Context, companyID string, managerID string) ([]TeamJoinRequest, error)
	HasPendingByPair(ctx context.Context, companyID string, employeeID string, managerID string) (bool, error)
	DeleteTerminalByPair(ctx context.Context, companyID string, employeeID string, managerID string) error
	// UpdateStatusIf writes the new status only while the current status
	// still matches; the returned count is the optimistic-concurrency
	// signal (0 means another actor got there first).
	UpdateStatusIf(ctx context.Context, companyID string, id string, fromStatus string, toStatus string, respondedAt *time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *TeamJoinRequest) error {
	if r.tx != nil {
		query := `
			INSERT INTO team_join_requests (id, company_id, employee_id, manager_id, status, message, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`
		_, err := r.tx.ExecContext(ctx, query,
			req.ID, req.CompanyID, req.EmployeeID, req.ManagerID, req.Status, req.Message,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*TeamJoinRequest, error) {
	var req TeamJoinRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID string, employeeID string) ([]TeamJoinRequest, error) {
	var reqs []TeamJoinRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllByManager(ctx context.Context, companyID string, managerID string) ([]TeamJoinRequest, error) {
	var reqs []TeamJoinRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("manager_id = ?", managerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) HasPendingByPair(ctx context.Context, companyID string, employeeID string, managerID string) (bool, error) {
	if r.tx != nil {
		query := `
			SELECT COUNT(1) FROM team_join_requests
			WHERE company_id = $1 AND employee_id = $2 AND manager_id = $3
				AND status = $4 AND deleted_at IS NULL
		`
		var count int64
		err := r.tx.QueryRowContext(ctx, query, companyID, employeeID, managerID, StatusPending).Scan(&count)
		return count > 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&TeamJoinRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND manager_id = ?", employeeID, managerID).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count > 0, err
}

// DeleteTerminalByPair discards rejected and cancelled history for a pair so
// a fresh proposal starts clean. Hard delete: terminal rows carry no state
// the engine ever reads back.
func (r *repository) DeleteTerminalByPair(ctx context.Context, companyID string, employeeID string, managerID string) error {
	if r.tx != nil {
		query := `
			DELETE FROM team_join_requests
			WHERE company_id = $1 AND employee_id = $2 AND manager_id = $3
				AND status IN ($4, $5)
		`
		_, err := r.tx.ExecContext(ctx, query, companyID, employeeID, managerID, StatusRejected, StatusCanceled)
		return err
	}
	return r.db.WithContext(ctx).
		Unscoped().
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND manager_id = ?", employeeID, managerID).
		Where("status IN ?", []string{StatusRejected, StatusCanceled}).
		Delete(&TeamJoinRequest{}).Error
}

func (r *repository) UpdateStatusIf(ctx context.Context, companyID string, id string, fromStatus string, toStatus string, respondedAt *time.Time) (int64, error) {
	if r.tx != nil {
		query := `
			UPDATE team_join_requests
			SET status = $1, responded_at = $2, updated_at = now()
			WHERE company_id = $3 AND id = $4 AND status = $5 AND deleted_at IS NULL
		`
		res, err := r.tx.ExecContext(ctx, query, toStatus, respondedAt, companyID, id, fromStatus)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	res := r.db.WithContext(ctx).
		Model(&TeamJoinRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"responded_at": respondedAt,
		})
	return res.RowsAffected, res.Error
}
