package visibility

import (
	"context"

	"go.uber.org/zap"

	"go-orgflow/internal/employee"
)

// Mode selects how wide an admin-capable caller may see. Different screens
// intentionally apply different scopes to the same role: exit detail is
// tenant-wide for admins while pending-approval lists stay direct-reports
// only, mirroring the manager experience.
type Mode string

const (
	ModeGlobal        Mode = "global"
	ModeDirectReports Mode = "direct_reports"
)

// Caller is the identity every engine operation receives explicitly.
type Caller struct {
	EmployeeID string
	CompanyID  string
	Role       string
}

// Scope is the set of employee ids a caller may view or act upon.
// Unrestricted means tenant-wide; an empty EmployeeIDs list means
// "show nothing", never an error.
type Scope struct {
	Unrestricted bool
	EmployeeIDs  []string
}

func (s Scope) Allows(employeeID string) bool {
	if s.Unrestricted {
		return true
	}
	for _, id := range s.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

func unrestricted() Scope {
	return Scope{Unrestricted: true, EmployeeIDs: []string{}}
}

func restrictedTo(ids []string) Scope {
	if ids == nil {
		ids = []string{}
	}
	return Scope{EmployeeIDs: ids}
}

//go:generate mockgen -source=visibility_scoper.go -destination=mock/visibility_scoper_mock.go -package=mock
type Scoper interface {
	VisibleEmployeeIDs(ctx context.Context, caller Caller, mode Mode) (Scope, error)
}

type scoper struct {
	repo   Repository
	logger *zap.Logger
}

func NewScoper(repo Repository, logger ...*zap.Logger) Scoper {
	l := zap.L().Named("visibility.scoper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("visibility.scoper")
	}
	return &scoper{repo: repo, logger: l}
}

func (s *scoper) VisibleEmployeeIDs(ctx context.Context, caller Caller, mode Mode) (Scope, error) {
	switch caller.Role {
	case employee.RoleHR:
		return unrestricted(), nil

	case employee.RoleOrgAdmin, employee.RolePlatformAdmin:
		if mode == ModeGlobal {
			return unrestricted(), nil
		}
		return s.directReportScope(ctx, caller)

	case employee.RoleManager:
		return s.directReportScope(ctx, caller)

	default:
		return restrictedTo([]string{caller.EmployeeID}), nil
	}
}

func (s *scoper) directReportScope(ctx context.Context, caller Caller) (Scope, error) {
	reportIDs, err := s.repo.FindDirectReportIDs(ctx, caller.CompanyID, caller.EmployeeID)
	if err != nil {
		s.logger.Error("load direct reports failed",
			zap.String("company_id", caller.CompanyID),
			zap.String("employee_id", caller.EmployeeID),
			zap.Error(err),
		)
		return Scope{}, err
	}

	if len(reportIDs) == 0 {
		hasManager, err := s.repo.HasManager(ctx, caller.CompanyID, caller.EmployeeID)
		if err != nil {
			return Scope{}, err
		}
		if !hasManager {
			// Root-level caller with nobody under them: explicitly empty
			// for direct-report queries.
			return restrictedTo(nil), nil
		}
	}

	return restrictedTo(reportIDs), nil
}
