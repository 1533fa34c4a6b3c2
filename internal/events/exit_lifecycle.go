package events

import "time"

const ExitLifecycleTopic = "org.exit.lifecycle.v1"

const (
	ExitRequestedEventType = "exit_requested"
	ExitCompletedEventType = "exit_completed"
)

type ExitLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	CompanyID     string    `json:"company_id"`
	ExitRequestID string    `json:"exit_request_id"`
	EmployeeID    string    `json:"employee_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
