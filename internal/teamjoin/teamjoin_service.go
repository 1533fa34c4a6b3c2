package teamjoin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/events"
	"go-orgflow/internal/messaging/kafka"
	"go-orgflow/internal/shared/contextutil"
	teamjoinerrors "go-orgflow/internal/teamjoin/errors"
)

// OrgChartInvalidator drops the cached rendered tree after an accepted
// proposal changes the hierarchy.
type OrgChartInvalidator interface {
	InvalidateCache(ctx context.Context, companyID string)
}

//go:generate mockgen -source=teamjoin_service.go -destination=mock/teamjoin_service_mock.go -package=mock
type Service interface {
	Propose(ctx context.Context, companyID, managerEmployeeID string, req ProposeTeamJoinRequest) (TeamJoinResponse, error)
	Respond(ctx context.Context, companyID, responderEmployeeID, id string, req RespondTeamJoinRequest) (TeamJoinResponse, error)
	Cancel(ctx context.Context, companyID, managerEmployeeID, id string) error
	ListForEmployee(ctx context.Context, companyID, employeeID string) ([]TeamJoinResponse, error)
	ListForManager(ctx context.Context, companyID, managerID string) ([]TeamJoinResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	outbox       kafka.OutboxRepository
	orgChart     OrgChartInvalidator
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	outbox kafka.OutboxRepository,
	orgChart OrgChartInvalidator,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("teamjoin.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("teamjoin.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		outbox:       outbox,
		orgChart:     orgChart,
		logger:       l,
	}
}

func (s *service) Propose(ctx context.Context, companyID, managerEmployeeID string, req ProposeTeamJoinRequest) (TeamJoinResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("propose team join requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("manager_id", managerEmployeeID),
		zap.String("employee_id", req.EmployeeID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrInvalidCompanyID
	}
	managerUUID, err := uuid.Parse(managerEmployeeID)
	if err != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrInvalidEmployeeID
	}

	target, err := s.employeeRepo.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamJoinResponse{}, teamjoinerrors.ErrTargetNotFound
		}
		s.logger.Error("propose team join target lookup failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}
	if employee.IsManagerial(target.Role) {
		return TeamJoinResponse{}, teamjoinerrors.ErrTargetNotJoinable
	}
	if target.EmploymentStatus != employee.StatusActive {
		return TeamJoinResponse{}, teamjoinerrors.ErrTargetNotActive
	}
	if target.ManagerID != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrTargetAlreadyManaged
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("propose team join begin tx failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pending, err := qtx.HasPendingByPair(ctx, companyID, req.EmployeeID, managerEmployeeID)
	if err != nil {
		s.logger.Error("propose team join pending check failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}
	if pending {
		s.logger.Warn("propose team join duplicate pending pair",
			zap.String("company_id", companyID),
			zap.String("employee_id", req.EmployeeID),
			zap.String("manager_id", managerEmployeeID),
		)
		return TeamJoinResponse{}, teamjoinerrors.ErrDuplicateProposal
	}

	// A rejected or cancelled pair does not block a new proposal; the old
	// record is discarded.
	if err := qtx.DeleteTerminalByPair(ctx, companyID, req.EmployeeID, managerEmployeeID); err != nil {
		s.logger.Error("propose team join discard terminal failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}

	proposal := &TeamJoinRequest{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		ManagerID:  managerUUID,
		Status:     StatusPending,
		Message:    req.Message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := qtx.Create(ctx, proposal); err != nil {
		s.logger.Error("propose team join persist failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}

	if err := s.queueEvent(ctx, tx, events.TeamJoinProposedEventType, proposal); err != nil {
		return TeamJoinResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("propose team join commit failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}

	s.logger.Info("propose team join success",
		zap.String("request_id", rid),
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("manager_id", managerEmployeeID),
	)

	return mapToResponse(*proposal), nil
}

func (s *service) Respond(ctx context.Context, companyID, responderEmployeeID, id string, req RespondTeamJoinRequest) (TeamJoinResponse, error) {
	s.logger.Debug("respond team join requested",
		zap.String("proposal_id", id),
		zap.String("company_id", companyID),
		zap.String("responder_id", responderEmployeeID),
		zap.String("action", req.Action),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(responderEmployeeID); err != nil {
		return TeamJoinResponse{}, teamjoinerrors.ErrInvalidActorID
	}

	proposal, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamJoinResponse{}, teamjoinerrors.ErrRequestNotFound
		}
		return TeamJoinResponse{}, err
	}
	if proposal.EmployeeID.String() != responderEmployeeID {
		return TeamJoinResponse{}, teamjoinerrors.ErrNotRequestOwner
	}
	if proposal.Status != StatusPending {
		return TeamJoinResponse{}, teamjoinerrors.ErrRequestNotPending
	}

	targetStatus := StatusRejected
	if req.Action == ActionAccept {
		targetStatus = StatusAccepted
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("respond team join begin tx failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	rows, err := qtx.UpdateStatusIf(ctx, companyID, id, StatusPending, targetStatus, &now)
	if err != nil {
		s.logger.Error("respond team join status update failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}
	if rows == 0 {
		// Another response or a cancel won the race.
		return TeamJoinResponse{}, teamjoinerrors.ErrConcurrentUpdate
	}

	if targetStatus == StatusAccepted {
		// The hierarchy edge is written here and only here: every
		// manager relationship in the store was consented to. The
		// unmanaged guard covers a second pending proposal from a
		// different manager accepted in between.
		rows, err := s.employeeRepo.WithTx(tx).AssignManager(ctx, companyID, responderEmployeeID, proposal.ManagerID.String())
		if err != nil {
			s.logger.Error("respond team join assign manager failed", zap.Error(err))
			return TeamJoinResponse{}, err
		}
		if rows == 0 {
			return TeamJoinResponse{}, teamjoinerrors.ErrTargetAlreadyManaged
		}
	}

	proposal.Status = targetStatus
	proposal.RespondedAt = &now

	if err := s.queueEvent(ctx, tx, events.TeamJoinRespondedEventType, proposal); err != nil {
		return TeamJoinResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("respond team join commit failed", zap.Error(err))
		return TeamJoinResponse{}, err
	}

	if targetStatus == StatusAccepted && s.orgChart != nil {
		s.orgChart.InvalidateCache(ctx, companyID)
	}

	s.logger.Info("respond team join success",
		zap.String("proposal_id", id),
		zap.String("status", targetStatus),
	)

	return mapToResponse(*proposal), nil
}

func (s *service) Cancel(ctx context.Context, companyID, managerEmployeeID, id string) error {
	s.logger.Debug("cancel team join requested",
		zap.String("proposal_id", id),
		zap.String("company_id", companyID),
		zap.String("manager_id", managerEmployeeID),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return teamjoinerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(managerEmployeeID); err != nil {
		return teamjoinerrors.ErrInvalidActorID
	}

	proposal, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamjoinerrors.ErrRequestNotFound
		}
		return err
	}
	if proposal.ManagerID.String() != managerEmployeeID {
		return teamjoinerrors.ErrNotProposalOwner
	}
	if proposal.Status != StatusPending {
		return teamjoinerrors.ErrRequestNotPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel team join begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	rows, err := qtx.UpdateStatusIf(ctx, companyID, id, StatusPending, StatusCanceled, &now)
	if err != nil {
		s.logger.Error("cancel team join status update failed", zap.Error(err))
		return err
	}
	if rows == 0 {
		return teamjoinerrors.ErrConcurrentUpdate
	}

	proposal.Status = StatusCanceled
	proposal.RespondedAt = &now
	if err := s.queueEvent(ctx, tx, events.TeamJoinCancelledEventType, proposal); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel team join commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("cancel team join success", zap.String("proposal_id", id))
	return nil
}

func (s *service) ListForEmployee(ctx context.Context, companyID, employeeID string) ([]TeamJoinResponse, error) {
	reqs, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

func (s *service) ListForManager(ctx context.Context, companyID, managerID string) ([]TeamJoinResponse, error) {
	reqs, err := s.repo.FindAllByManager(ctx, companyID, managerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

func (s *service) queueEvent(ctx context.Context, tx *sql.Tx, eventType string, proposal *TeamJoinRequest) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.TeamJoinEvent{
		EventType:  eventType,
		RequestID:  rid,
		CompanyID:  proposal.CompanyID.String(),
		ProposalID: proposal.ID.String(),
		EmployeeID: proposal.EmployeeID.String(),
		ManagerID:  proposal.ManagerID.String(),
		Status:     proposal.Status,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal team join event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "team_join_request",
		AggregateID:   proposal.ID.String(),
		EventType:     eventType,
		Topic:         events.TeamJoinTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}
