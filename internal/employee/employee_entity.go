package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-orgflow/internal/department"
)

const (
	RolePlatformAdmin = "PLATFORM_ADMIN"
	RoleOrgAdmin      = "ORG_ADMIN"
	RoleManager       = "MANAGER"
	RoleHR            = "HR"
	RoleAccountant    = "ACCOUNTANT"
	RoleEmployee      = "EMPLOYEE"
)

const (
	StatusActive     = "ACTIVE"
	StatusInactive   = "INACTIVE"
	StatusTerminated = "TERMINATED"
	StatusOnLeave    = "ON_LEAVE"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_employees_company_manager"`
	UserID       *uuid.UUID `gorm:"type:uuid"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index:idx_employees_company_manager"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`

	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(255);uniqueIndex:uq_employee_email"`

	Role             string `gorm:"type:varchar(30);not null;default:'EMPLOYEE'"`
	EmploymentStatus string `gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	Department *department.Department `gorm:"foreignKey:DepartmentID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}

func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	return e.FirstName + " " + e.LastName
}

// IsManagerial reports whether a role may own direct reports.
func IsManagerial(role string) bool {
	switch role {
	case RoleManager, RoleOrgAdmin, RolePlatformAdmin:
		return true
	default:
		return false
	}
}
