package events

import "time"

const TeamJoinTopic = "org.team_join.lifecycle.v1"

const (
	TeamJoinProposedEventType  = "team_join_proposed"
	TeamJoinRespondedEventType = "team_join_responded"
	TeamJoinCancelledEventType = "team_join_cancelled"
)

// TeamJoinEvent notifies the affected party of a proposal lifecycle step.
// Delivery is fire and forget: the consumer sends the notification, the
// hierarchy write has already committed.
type TeamJoinEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	CompanyID  string    `json:"company_id"`
	ProposalID string    `json:"proposal_id"`
	EmployeeID string    `json:"employee_id"`
	ManagerID  string    `json:"manager_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
