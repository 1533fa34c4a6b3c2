package exits

import "time"

type CreateExitRequest struct {
	EmployeeID      string `json:"employee_id" binding:"required,uuid"`
	Reason          string `json:"reason" binding:"required"`
	LastWorkingDate string `json:"last_working_date" binding:"required"`
}

// TransitionExitRequest carries the action plus the optional per-action
// payload fields; the service validates which ones apply.
type TransitionExitRequest struct {
	Action                string   `json:"action" binding:"required"`
	RejectionReason       string   `json:"rejection_reason"`
	NoticeWaived          bool     `json:"notice_waived"`
	NoticeWaiverReason    string   `json:"notice_waiver_reason"`
	FinalSettlementAmount *float64 `json:"final_settlement_amount"`
}

type UpdateClearanceTaskRequest struct {
	Status  string `json:"status" binding:"required,oneof=IN_PROGRESS COMPLETED NOT_APPLICABLE"`
	Remarks string `json:"remarks"`
}

type ClearanceTaskResponse struct {
	ID            string  `json:"id"`
	ExitRequestID string  `json:"exit_request_id"`
	Department    string  `json:"department"`
	Status        string  `json:"status"`
	Remarks       string  `json:"remarks,omitempty"`
	CompletedBy   *string `json:"completed_by,omitempty"`
	CompletedAt   *string `json:"completed_at,omitempty"`
}

type ExitResponse struct {
	ID                    string                  `json:"id"`
	CompanyID             string                  `json:"company_id"`
	EmployeeID            string                  `json:"employee_id"`
	ExitNumber            string                  `json:"exit_number"`
	Status                string                  `json:"status"`
	Reason                string                  `json:"reason"`
	LastWorkingDate       string                  `json:"last_working_date"`
	NoticeWaived          bool                    `json:"notice_waived"`
	NoticeWaiverReason    *string                 `json:"notice_waiver_reason,omitempty"`
	FinalSettlementAmount *float64                `json:"final_settlement_amount,omitempty"`
	RequestedBy           string                  `json:"requested_by"`
	ManagerActionBy       *string                 `json:"manager_action_by,omitempty"`
	ManagerActionAt       *string                 `json:"manager_action_at,omitempty"`
	ManagerRejection      *string                 `json:"manager_rejection_reason,omitempty"`
	CompletedBy           *string                 `json:"completed_by,omitempty"`
	CompletedAt           *string                 `json:"completed_at,omitempty"`
	ClearanceTasks        []ClearanceTaskResponse `json:"clearance_tasks,omitempty"`
	CreatedAt             string                  `json:"created_at"`
}

func mapTaskToResponse(t ClearanceTask) ClearanceTaskResponse {
	resp := ClearanceTaskResponse{
		ID:            t.ID.String(),
		ExitRequestID: t.ExitRequestID.String(),
		Department:    t.Department,
		Status:        t.Status,
		Remarks:       t.Remarks,
	}
	if t.CompletedBy != nil {
		v := t.CompletedBy.String()
		resp.CompletedBy = &v
	}
	if t.CompletedAt != nil {
		v := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}

func mapToResponse(e ExitRequest) ExitResponse {
	resp := ExitResponse{
		ID:                    e.ID.String(),
		CompanyID:             e.CompanyID.String(),
		EmployeeID:            e.EmployeeID.String(),
		ExitNumber:            e.ExitNumber,
		Status:                e.Status,
		Reason:                e.Reason,
		LastWorkingDate:       e.LastWorkingDate.Format("2006-01-02"),
		NoticeWaived:          e.NoticeWaived,
		NoticeWaiverReason:    e.NoticeWaiverReason,
		FinalSettlementAmount: e.FinalSettlementAmount,
		RequestedBy:           e.RequestedBy.String(),
		ManagerRejection:      e.ManagerRejectionReason,
		CreatedAt:             e.CreatedAt.Format(time.RFC3339),
	}
	if e.ManagerActionBy != nil {
		v := e.ManagerActionBy.String()
		resp.ManagerActionBy = &v
	}
	if e.ManagerActionAt != nil {
		v := e.ManagerActionAt.Format(time.RFC3339)
		resp.ManagerActionAt = &v
	}
	if e.CompletedBy != nil {
		v := e.CompletedBy.String()
		resp.CompletedBy = &v
	}
	if e.CompletedAt != nil {
		v := e.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	for _, t := range e.ClearanceTasks {
		resp.ClearanceTasks = append(resp.ClearanceTasks, mapTaskToResponse(t))
	}
	return resp
}

func mapToListResponse(exitRequests []ExitRequest) []ExitResponse {
	resp := make([]ExitResponse, len(exitRequests))
	for i, e := range exitRequests {
		resp[i] = mapToResponse(e)
	}
	return resp
}
