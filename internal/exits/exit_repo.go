package exits

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"go-orgflow/internal/tenant"
)

//go:generate mockgen -source=exit_repo.go -destination=mock/exit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *ExitRequest) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*ExitRequest, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]ExitRequest, error)
	FindAllByEmployeeIDs(ctx context.Context, companyID string, employeeIDs []string) ([]ExitRequest, error)
	HasOpenByEmployee(ctx context.Context, companyID string, employeeID string) (bool, error)
	// UpdateStatusIf applies the transition plus its side columns only
	// while the current status still matches; 0 affected rows is the
	// lost-a-race signal.
	UpdateStatusIf(ctx context.Context, companyID string, id string, fromStatus string, toStatus string, updates map[string]interface{}) (int64, error)
	FindTaskByIDAndCompany(ctx context.Context, companyID string, taskID string) (*ClearanceTask, error)
	UpdateTask(ctx context.Context, t *ClearanceTask) error
	CountOpenTasks(ctx context.Context, companyID string, exitRequestID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, e *ExitRequest) error {
	if r.tx != nil {
		return r.createTx(ctx, e)
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) createTx(ctx context.Context, e *ExitRequest) error {
	query := `
		INSERT INTO exit_requests (id, company_id, employee_id, exit_number, status, reason, last_working_date, requested_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`
	if _, err := r.tx.ExecContext(ctx, query,
		e.ID, e.CompanyID, e.EmployeeID, e.ExitNumber, e.Status, e.Reason, e.LastWorkingDate, e.RequestedBy,
	); err != nil {
		return err
	}

	taskQuery := `
		INSERT INTO clearance_tasks (id, company_id, exit_request_id, department, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`
	for _, t := range e.ClearanceTasks {
		if _, err := r.tx.ExecContext(ctx, taskQuery,
			t.ID, t.CompanyID, t.ExitRequestID, t.Department, t.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*ExitRequest, error) {
	var e ExitRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("ClearanceTasks").
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]ExitRequest, error) {
	var exitRequests []ExitRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&exitRequests).Error
	return exitRequests, err
}

func (r *repository) FindAllByEmployeeIDs(ctx context.Context, companyID string, employeeIDs []string) ([]ExitRequest, error) {
	if len(employeeIDs) == 0 {
		return []ExitRequest{}, nil
	}
	var exitRequests []ExitRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id IN ?", employeeIDs).
		Order("created_at DESC").
		Find(&exitRequests).Error
	return exitRequests, err
}

func (r *repository) HasOpenByEmployee(ctx context.Context, companyID string, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ExitRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []string{StatusManagerRejected, StatusCompleted}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateStatusIf(ctx context.Context, companyID string, id string, fromStatus string, toStatus string, updates map[string]interface{}) (int64, error) {
	if r.tx != nil {
		return r.updateStatusIfTx(ctx, companyID, id, fromStatus, toStatus, updates)
	}

	set := map[string]interface{}{"status": toStatus}
	for k, v := range updates {
		set[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&ExitRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(set)
	return res.RowsAffected, res.Error
}

func (r *repository) updateStatusIfTx(ctx context.Context, companyID string, id string, fromStatus string, toStatus string, updates map[string]interface{}) (int64, error) {
	columns := make([]string, 0, len(updates))
	for k := range updates {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	query := "UPDATE exit_requests SET status = $1, updated_at = now()"
	args := []interface{}{toStatus}
	for _, col := range columns {
		args = append(args, updates[col])
		query += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	args = append(args, companyID, id, fromStatus)
	query += fmt.Sprintf(" WHERE company_id = $%d AND id = $%d AND status = $%d AND deleted_at IS NULL",
		len(args)-2, len(args)-1, len(args))

	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) FindTaskByIDAndCompany(ctx context.Context, companyID string, taskID string) (*ClearanceTask, error) {
	var t ClearanceTask
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&t, "id = ?", taskID).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) UpdateTask(ctx context.Context, t *ClearanceTask) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) CountOpenTasks(ctx context.Context, companyID string, exitRequestID string) (int64, error) {
	if r.tx != nil {
		query := `
			SELECT COUNT(1) FROM clearance_tasks
			WHERE company_id = $1 AND exit_request_id = $2 AND status IN ($3, $4)
		`
		var count int64
		err := r.tx.QueryRowContext(ctx, query, companyID, exitRequestID, TaskStatusPending, TaskStatusInProgress).Scan(&count)
		return count, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&ClearanceTask{}).
		Scopes(tenant.Scope(companyID)).
		Where("exit_request_id = ?", exitRequestID).
		Where("status IN ?", []string{TaskStatusPending, TaskStatusInProgress}).
		Count(&count).Error
	return count, err
}
