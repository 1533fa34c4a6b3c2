package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-orgflow/internal/events"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	NotifyTeamJoin(ctx context.Context, event events.TeamJoinEvent) error
	NotifyExitLifecycle(ctx context.Context, event events.ExitLifecycleEvent) error
	ListForRecipient(ctx context.Context, companyID, recipientID string) ([]NotificationResponse, error)
}

type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

// NotifyTeamJoin writes an inbox entry for the party that did not act:
// proposals notify the employee, responses and cancellations notify the
// other side by status.
func (s *service) NotifyTeamJoin(ctx context.Context, event events.TeamJoinEvent) error {
	companyID, err := uuid.Parse(event.CompanyID)
	if err != nil {
		return err
	}

	var recipient uuid.UUID
	var title, body string
	switch event.EventType {
	case events.TeamJoinProposedEventType:
		recipient, err = uuid.Parse(event.EmployeeID)
		title = "Team join proposal received"
		body = "A manager has proposed that you join their team."
	case events.TeamJoinRespondedEventType:
		recipient, err = uuid.Parse(event.ManagerID)
		title = "Team join proposal answered"
		body = fmt.Sprintf("Your proposal was %s.", event.Status)
	case events.TeamJoinCancelledEventType:
		recipient, err = uuid.Parse(event.EmployeeID)
		title = "Team join proposal withdrawn"
		body = "The manager withdrew their team join proposal."
	default:
		s.logger.Warn("unknown team join event type", zap.String("event_type", event.EventType))
		return nil
	}
	if err != nil {
		return err
	}

	n := &Notification{
		ID:          uuid.New(),
		CompanyID:   companyID,
		RecipientID: recipient,
		Kind:        KindTeamJoin,
		Title:       title,
		Body:        body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.logger.Info("team join notification delivered",
		zap.String("request_id", event.RequestID),
		zap.String("proposal_id", event.ProposalID),
		zap.String("recipient_id", recipient.String()),
		zap.String("event_type", event.EventType),
	)
	return nil
}

func (s *service) NotifyExitLifecycle(ctx context.Context, event events.ExitLifecycleEvent) error {
	companyID, err := uuid.Parse(event.CompanyID)
	if err != nil {
		return err
	}
	recipient, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return err
	}

	var title, body string
	switch event.EventType {
	case events.ExitRequestedEventType:
		title = "Exit request opened"
		body = fmt.Sprintf("An exit request was opened for you (status %s).", event.Status)
	case events.ExitCompletedEventType:
		title = "Exit completed"
		body = "Your offboarding has been completed."
	default:
		s.logger.Warn("unknown exit lifecycle event type", zap.String("event_type", event.EventType))
		return nil
	}

	n := &Notification{
		ID:          uuid.New(),
		CompanyID:   companyID,
		RecipientID: recipient,
		Kind:        KindExit,
		Title:       title,
		Body:        body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.logger.Info("exit lifecycle notification delivered",
		zap.String("request_id", event.RequestID),
		zap.String("exit_request_id", event.ExitRequestID),
		zap.String("recipient_id", recipient.String()),
		zap.String("event_type", event.EventType),
	)
	return nil
}

func (s *service) ListForRecipient(ctx context.Context, companyID, recipientID string) ([]NotificationResponse, error) {
	notifications, err := s.repo.FindAllByRecipient(ctx, companyID, recipientID)
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = NotificationResponse{
			ID:        n.ID.String(),
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.ReadAt != nil,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}
