package exits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPendingManager     = "PENDING_MANAGER"
	StatusManagerApproved    = "MANAGER_APPROVED"
	StatusManagerRejected    = "MANAGER_REJECTED"
	StatusHRProcessing       = "HR_PROCESSING"
	StatusClearancePending   = "CLEARANCE_PENDING"
	StatusClearanceCompleted = "CLEARANCE_COMPLETED"
	StatusCompleted          = "COMPLETED"
)

const (
	TaskStatusPending       = "PENDING"
	TaskStatusInProgress    = "IN_PROGRESS"
	TaskStatusCompleted     = "COMPLETED"
	TaskStatusNotApplicable = "NOT_APPLICABLE"
)

const (
	DeptIT      = "IT"
	DeptFinance = "FINANCE"
	DeptHR      = "HR"
	DeptAdmin   = "ADMIN"
)

// DefaultClearanceDepartments is the checklist seeded on every new exit
// request. Completion of the exit is gated on all of them reaching a
// terminal task status.
var DefaultClearanceDepartments = []string{DeptIT, DeptFinance, DeptHR, DeptAdmin}

type ExitRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_exit_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_exit_requests_employee"`

	ExitNumber string `gorm:"type:varchar(20);not null;uniqueIndex:uq_exit_number"`
	Status     string `gorm:"type:varchar(30);not null;default:'PENDING_MANAGER';index:idx_exit_requests_company_status"`
	Reason     string `gorm:"type:text"`

	LastWorkingDate       time.Time `gorm:"type:date"`
	NoticeWaived          bool      `gorm:"not null;default:false"`
	NoticeWaiverReason    *string   `gorm:"type:text"`
	FinalSettlementAmount *float64  `gorm:"type:numeric(14,2)"`

	RequestedBy uuid.UUID `gorm:"type:uuid;not null"`

	ManagerActionBy        *uuid.UUID `gorm:"type:uuid"`
	ManagerActionAt        *time.Time
	ManagerRejectionReason *string `gorm:"type:text"`

	HRProcessedBy        *uuid.UUID `gorm:"type:uuid"`
	HRProcessedAt        *time.Time
	ClearanceStartedBy   *uuid.UUID `gorm:"type:uuid"`
	ClearanceStartedAt   *time.Time
	ClearanceCompletedBy *uuid.UUID `gorm:"type:uuid"`
	ClearanceCompletedAt *time.Time
	CompletedBy          *uuid.UUID `gorm:"type:uuid"`
	CompletedAt          *time.Time

	ClearanceTasks []ClearanceTask `gorm:"foreignKey:ExitRequestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_exit_requests_deleted_at"`
}

type ClearanceTask struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ExitRequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_clearance_tasks_exit"`

	Department string `gorm:"type:varchar(20);not null"`
	Status     string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Remarks    string `gorm:"type:text"`

	CompletedBy *uuid.UUID `gorm:"type:uuid"`
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func IsTerminalTaskStatus(status string) bool {
	return status == TaskStatusCompleted || status == TaskStatusNotApplicable
}
