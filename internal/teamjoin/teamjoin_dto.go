package teamjoin

import "time"

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type ProposeTeamJoinRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Message    string `json:"message"`
}

type RespondTeamJoinRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

type TeamJoinResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	EmployeeID  string  `json:"employee_id"`
	ManagerID   string  `json:"manager_id"`
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	RespondedAt *string `json:"responded_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func mapToResponse(r TeamJoinRequest) TeamJoinResponse {
	resp := TeamJoinResponse{
		ID:         r.ID.String(),
		CompanyID:  r.CompanyID.String(),
		EmployeeID: r.EmployeeID.String(),
		ManagerID:  r.ManagerID.String(),
		Status:     r.Status,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.RespondedAt != nil {
		v := r.RespondedAt.Format(time.RFC3339)
		resp.RespondedAt = &v
	}
	return resp
}

func mapToListResponse(requests []TeamJoinRequest) []TeamJoinResponse {
	resp := make([]TeamJoinResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
