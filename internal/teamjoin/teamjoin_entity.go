package teamjoin

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELLED"
)

// TeamJoinRequest is the only pathway through which a manager edge enters
// the hierarchy: the edge is written on accept and never otherwise.
type TeamJoinRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_team_join_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_team_join_pair"`
	ManagerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_team_join_pair"`

	Status  string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_team_join_company_status"`
	Message string `gorm:"type:text"`

	RespondedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_team_join_deleted_at"`
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusAccepted, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}
