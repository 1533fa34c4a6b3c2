package exits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/events"
	exiterrors "go-orgflow/internal/exits/errors"
	"go-orgflow/internal/messaging/kafka"
	"go-orgflow/internal/shared/contextutil"
	"go-orgflow/internal/shared/counter"
	"go-orgflow/internal/visibility"
)

const resignedAccountStatus = "RESIGNED"

type OrgChartInvalidator interface {
	InvalidateCache(ctx context.Context, companyID string)
}

//go:generate mockgen -source=exit_service.go -destination=mock/exit_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateExitRequest) (ExitResponse, error)
	GetAll(ctx context.Context, caller visibility.Caller) ([]ExitResponse, error)
	GetByID(ctx context.Context, caller visibility.Caller, id string) (ExitResponse, error)
	Transition(ctx context.Context, caller visibility.Caller, id string, req TransitionExitRequest) (ExitResponse, error)
	UpdateClearanceTask(ctx context.Context, caller visibility.Caller, taskID string, req UpdateClearanceTaskRequest) (ClearanceTaskResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	scoper       visibility.Scoper
	counter      counter.Repository
	outbox       kafka.OutboxRepository
	orgChart     OrgChartInvalidator
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	scoper visibility.Scoper,
	counterRepo counter.Repository,
	outbox kafka.OutboxRepository,
	orgChart OrgChartInvalidator,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("exits.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("exits.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		scoper:       scoper,
		counter:      counterRepo,
		outbox:       outbox,
		orgChart:     orgChart,
		logger:       l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateExitRequest) (ExitResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create exit request requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidEmployeeID
	}
	lastWorkingDate, err := time.Parse("2006-01-02", req.LastWorkingDate)
	if err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidDateFormat
	}

	if _, err := s.employeeRepo.FindByIDAndCompany(ctx, companyID, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExitResponse{}, exiterrors.ErrEmployeeNotInCompany
		}
		return ExitResponse{}, err
	}

	open, err := s.repo.HasOpenByEmployee(ctx, companyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("create exit open check failed", zap.Error(err))
		return ExitResponse{}, err
	}
	if open {
		return ExitResponse{}, exiterrors.ErrExitAlreadyOpen
	}

	nextVal, err := s.counter.GetNextValue(ctx, companyID, "exit_number")
	if err != nil {
		s.logger.Error("create exit generate number failed", zap.Error(err))
		return ExitResponse{}, err
	}

	e := &ExitRequest{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		EmployeeID:      employeeUUID,
		ExitNumber:      fmt.Sprintf("EXIT-%06d", nextVal),
		Status:          StatusPendingManager,
		Reason:          req.Reason,
		LastWorkingDate: lastWorkingDate,
		RequestedBy:     actorUUID,
	}
	for _, dept := range DefaultClearanceDepartments {
		e.ClearanceTasks = append(e.ClearanceTasks, ClearanceTask{
			ID:            uuid.New(),
			CompanyID:     companyUUID,
			ExitRequestID: e.ID,
			Department:    dept,
			Status:        TaskStatusPending,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create exit begin tx failed", zap.Error(err))
		return ExitResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, e); err != nil {
		s.logger.Error("create exit persist failed", zap.Error(err))
		return ExitResponse{}, err
	}

	if err := s.queueEvent(ctx, tx, events.ExitRequestedEventType, e); err != nil {
		return ExitResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create exit commit failed", zap.Error(err))
		return ExitResponse{}, err
	}

	s.logger.Info("create exit success",
		zap.String("request_id", rid),
		zap.String("exit_request_id", e.ID.String()),
		zap.String("exit_number", e.ExitNumber),
	)

	return mapToResponse(*e), nil
}

// GetAll lists exit requests inside the caller's direct-report scope.
// Intentionally narrower than GetByID for admins: approval queues mirror
// the manager experience.
func (s *service) GetAll(ctx context.Context, caller visibility.Caller) ([]ExitResponse, error) {
	scope, err := s.scoper.VisibleEmployeeIDs(ctx, caller, visibility.ModeDirectReports)
	if err != nil {
		return nil, err
	}

	if scope.Unrestricted {
		exitRequests, err := s.repo.FindAllByCompany(ctx, caller.CompanyID)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(exitRequests), nil
	}

	exitRequests, err := s.repo.FindAllByEmployeeIDs(ctx, caller.CompanyID, scope.EmployeeIDs)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(exitRequests), nil
}

// GetByID resolves detail with the global scope mode: tenant-wide for
// admins, own reports for managers, self otherwise.
func (s *service) GetByID(ctx context.Context, caller visibility.Caller, id string) (ExitResponse, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExitResponse{}, exiterrors.ErrExitNotFound
		}
		return ExitResponse{}, err
	}

	scope, err := s.scoper.VisibleEmployeeIDs(ctx, caller, visibility.ModeGlobal)
	if err != nil {
		return ExitResponse{}, err
	}
	if !scope.Allows(e.EmployeeID.String()) {
		return ExitResponse{}, exiterrors.ErrEmployeeOutOfScope
	}

	return mapToResponse(*e), nil
}

func (s *service) Transition(ctx context.Context, caller visibility.Caller, id string, req TransitionExitRequest) (ExitResponse, error) {
	s.logger.Debug("transition exit requested",
		zap.String("exit_request_id", id),
		zap.String("company_id", caller.CompanyID),
		zap.String("actor_id", caller.EmployeeID),
		zap.String("action", req.Action),
	)

	if _, err := uuid.Parse(caller.CompanyID); err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(caller.EmployeeID); err != nil {
		return ExitResponse{}, exiterrors.ErrInvalidActorID
	}

	rule, ok := transitionRules[req.Action]
	if !ok {
		return ExitResponse{}, exiterrors.ErrUnknownAction
	}
	if !rule.Roles[caller.Role] {
		return ExitResponse{}, exiterrors.ErrActionNotAllowedForRole
	}

	e, err := s.repo.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExitResponse{}, exiterrors.ErrExitNotFound
		}
		return ExitResponse{}, err
	}

	if rule.Scoped {
		scope, err := s.scoper.VisibleEmployeeIDs(ctx, caller, rule.Mode)
		if err != nil {
			return ExitResponse{}, err
		}
		if !scope.Allows(e.EmployeeID.String()) {
			s.logger.Warn("transition exit actor out of scope",
				zap.String("exit_request_id", id),
				zap.String("actor_id", caller.EmployeeID),
				zap.String("action", req.Action),
			)
			return ExitResponse{}, exiterrors.ErrEmployeeOutOfScope
		}
	}

	if e.Status != rule.From {
		s.logger.Warn("transition exit invalid status",
			zap.String("exit_request_id", id),
			zap.String("from_status", e.Status),
			zap.String("action", req.Action),
		)
		return ExitResponse{}, exiterrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	actorUUID := uuid.MustParse(caller.EmployeeID)
	updates := map[string]interface{}{}

	switch req.Action {
	case ActionManagerApprove:
		updates["manager_action_by"] = caller.EmployeeID
		updates["manager_action_at"] = now
		e.ManagerActionBy = &actorUUID
		e.ManagerActionAt = &now

	case ActionManagerReject:
		if req.RejectionReason == "" {
			return ExitResponse{}, exiterrors.ErrRejectionReasonRequired
		}
		updates["manager_action_by"] = caller.EmployeeID
		updates["manager_action_at"] = now
		updates["manager_rejection_reason"] = req.RejectionReason
		e.ManagerActionBy = &actorUUID
		e.ManagerActionAt = &now
		e.ManagerRejectionReason = &req.RejectionReason

	case ActionHRProcess:
		updates["hr_processed_by"] = caller.EmployeeID
		updates["hr_processed_at"] = now
		updates["notice_waived"] = req.NoticeWaived
		e.HRProcessedBy = &actorUUID
		e.HRProcessedAt = &now
		e.NoticeWaived = req.NoticeWaived
		if req.NoticeWaived && req.NoticeWaiverReason != "" {
			updates["notice_waiver_reason"] = req.NoticeWaiverReason
			e.NoticeWaiverReason = &req.NoticeWaiverReason
		}

	case ActionStartClearance:
		updates["clearance_started_by"] = caller.EmployeeID
		updates["clearance_started_at"] = now
		e.ClearanceStartedBy = &actorUUID
		e.ClearanceStartedAt = &now

	case ActionCompleteClearance:
		openTasks, err := s.repo.CountOpenTasks(ctx, caller.CompanyID, id)
		if err != nil {
			s.logger.Error("transition exit count open tasks failed", zap.Error(err))
			return ExitResponse{}, err
		}
		if openTasks > 0 {
			s.logger.Warn("transition exit clearance incomplete",
				zap.String("exit_request_id", id),
				zap.Int64("open_tasks", openTasks),
			)
			return ExitResponse{}, exiterrors.NewClearanceIncomplete(openTasks)
		}
		updates["clearance_completed_by"] = caller.EmployeeID
		updates["clearance_completed_at"] = now
		e.ClearanceCompletedBy = &actorUUID
		e.ClearanceCompletedAt = &now

	case ActionCompleteExit:
		return s.completeExit(ctx, caller, e, rule, req, now)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition exit begin tx failed", zap.Error(err))
		return ExitResponse{}, err
	}
	defer tx.Rollback()

	rows, err := s.repo.WithTx(tx).UpdateStatusIf(ctx, caller.CompanyID, id, rule.From, rule.To, updates)
	if err != nil {
		s.logger.Error("transition exit persist failed", zap.Error(err))
		return ExitResponse{}, err
	}
	if rows == 0 {
		return ExitResponse{}, exiterrors.ErrConcurrentUpdate
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition exit commit failed", zap.Error(err))
		return ExitResponse{}, err
	}

	e.Status = rule.To
	s.logger.Info("transition exit success",
		zap.String("exit_request_id", id),
		zap.String("action", req.Action),
		zap.String("status", e.Status),
	)

	return mapToResponse(*e), nil
}

// completeExit finalizes the offboarding in one transaction: exit status,
// employment status, identity account status and settlement move together
// or not at all.
func (s *service) completeExit(ctx context.Context, caller visibility.Caller, e *ExitRequest, rule transitionRule, req TransitionExitRequest, now time.Time) (ExitResponse, error) {
	id := e.ID.String()
	actorUUID := uuid.MustParse(caller.EmployeeID)

	updates := map[string]interface{}{
		"completed_by": caller.EmployeeID,
		"completed_at": now,
	}
	if req.FinalSettlementAmount != nil {
		updates["final_settlement_amount"] = *req.FinalSettlementAmount
		e.FinalSettlementAmount = req.FinalSettlementAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("complete exit begin tx failed", zap.Error(err))
		return ExitResponse{}, err
	}
	defer tx.Rollback()

	rows, err := s.repo.WithTx(tx).UpdateStatusIf(ctx, caller.CompanyID, id, rule.From, rule.To, updates)
	if err != nil {
		s.logger.Error("complete exit persist failed", zap.Error(err))
		return ExitResponse{}, err
	}
	if rows == 0 {
		return ExitResponse{}, exiterrors.ErrConcurrentUpdate
	}

	employeeID := e.EmployeeID.String()
	qEmployees := s.employeeRepo.WithTx(tx)
	if err := qEmployees.SetEmploymentStatus(ctx, caller.CompanyID, employeeID, employee.StatusTerminated); err != nil {
		s.logger.Error("complete exit terminate employee failed", zap.Error(err))
		return ExitResponse{}, err
	}
	if err := qEmployees.SetUserAccountStatus(ctx, caller.CompanyID, employeeID, resignedAccountStatus); err != nil {
		s.logger.Error("complete exit resign account failed", zap.Error(err))
		return ExitResponse{}, err
	}

	e.Status = rule.To
	e.CompletedBy = &actorUUID
	e.CompletedAt = &now

	if err := s.queueEvent(ctx, tx, events.ExitCompletedEventType, e); err != nil {
		return ExitResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("complete exit commit failed", zap.Error(err))
		return ExitResponse{}, err
	}

	if s.orgChart != nil {
		s.orgChart.InvalidateCache(ctx, caller.CompanyID)
	}

	s.logger.Info("complete exit success",
		zap.String("exit_request_id", id),
		zap.String("employee_id", employeeID),
	)

	return mapToResponse(*e), nil
}

func (s *service) UpdateClearanceTask(ctx context.Context, caller visibility.Caller, taskID string, req UpdateClearanceTaskRequest) (ClearanceTaskResponse, error) {
	s.logger.Debug("update clearance task requested",
		zap.String("task_id", taskID),
		zap.String("company_id", caller.CompanyID),
		zap.String("actor_id", caller.EmployeeID),
		zap.String("target_status", req.Status),
	)

	if _, err := uuid.Parse(caller.CompanyID); err != nil {
		return ClearanceTaskResponse{}, exiterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(caller.EmployeeID)
	if err != nil {
		return ClearanceTaskResponse{}, exiterrors.ErrInvalidActorID
	}

	t, err := s.repo.FindTaskByIDAndCompany(ctx, caller.CompanyID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClearanceTaskResponse{}, exiterrors.ErrTaskNotFound
		}
		return ClearanceTaskResponse{}, err
	}

	if !canActOnTask(caller.Role, t.Department) {
		s.logger.Warn("update clearance task role rejected",
			zap.String("task_id", taskID),
			zap.String("role", caller.Role),
			zap.String("department", t.Department),
		)
		return ClearanceTaskResponse{}, exiterrors.ErrTaskRoleNotAllowed
	}
	if !isAllowedTaskTransition(t.Status, req.Status) {
		return ClearanceTaskResponse{}, exiterrors.ErrInvalidTaskTransition
	}

	t.Status = req.Status
	if req.Remarks != "" {
		t.Remarks = req.Remarks
	}
	if IsTerminalTaskStatus(req.Status) {
		now := time.Now().UTC()
		t.CompletedBy = &actorUUID
		t.CompletedAt = &now
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		s.logger.Error("update clearance task persist failed", zap.Error(err))
		return ClearanceTaskResponse{}, err
	}

	s.logger.Info("update clearance task success",
		zap.String("task_id", taskID),
		zap.String("status", t.Status),
	)

	return mapTaskToResponse(*t), nil
}

func (s *service) queueEvent(ctx context.Context, tx *sql.Tx, eventType string, e *ExitRequest) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.ExitLifecycleEvent{
		EventType:     eventType,
		RequestID:     rid,
		CompanyID:     e.CompanyID.String(),
		ExitRequestID: e.ID.String(),
		EmployeeID:    e.EmployeeID.String(),
		Status:        e.Status,
		OccurredAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal exit event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "exit_request",
		AggregateID:   e.ID.String(),
		EventType:     eventType,
		Topic:         events.ExitLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}
