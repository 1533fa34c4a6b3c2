package exits

import (
	"go-orgflow/internal/employee"
	"go-orgflow/internal/visibility"
)

const (
	ActionManagerApprove    = "MANAGER_APPROVE"
	ActionManagerReject     = "MANAGER_REJECT"
	ActionHRProcess         = "HR_PROCESS"
	ActionStartClearance    = "START_CLEARANCE"
	ActionCompleteClearance = "COMPLETE_CLEARANCE"
	ActionCompleteExit      = "COMPLETE_EXIT"
)

// transitionRule keeps the state machine declarative: one row per action
// instead of branching conditionals scattered through the service.
type transitionRule struct {
	From  string
	To    string
	Roles map[string]bool
	// Scoped transitions additionally require the exit's employee to fall
	// inside the actor's direct-report scope; admins go through the same
	// check as managers here.
	Scoped bool
	Mode   visibility.Mode
}

var transitionRules = map[string]transitionRule{
	ActionManagerApprove: {
		From:   StatusPendingManager,
		To:     StatusManagerApproved,
		Roles:  roleSet(employee.RoleManager, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
		Scoped: true,
		Mode:   visibility.ModeDirectReports,
	},
	ActionManagerReject: {
		From:   StatusPendingManager,
		To:     StatusManagerRejected,
		Roles:  roleSet(employee.RoleManager, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
		Scoped: true,
		Mode:   visibility.ModeDirectReports,
	},
	ActionHRProcess: {
		From:  StatusManagerApproved,
		To:    StatusHRProcessing,
		Roles: roleSet(employee.RoleHR, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	},
	ActionStartClearance: {
		From:  StatusHRProcessing,
		To:    StatusClearancePending,
		Roles: roleSet(employee.RoleHR, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	},
	ActionCompleteClearance: {
		From:  StatusClearancePending,
		To:    StatusClearanceCompleted,
		Roles: roleSet(employee.RoleHR, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	},
	ActionCompleteExit: {
		From:  StatusClearanceCompleted,
		To:    StatusCompleted,
		Roles: roleSet(employee.RoleHR, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	},
}

// clearanceTaskRoles maps a task's department tag to the roles that may move
// it. Org and platform admins may act on any department.
var clearanceTaskRoles = map[string]map[string]bool{
	DeptFinance: roleSet(employee.RoleAccountant, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	DeptHR:      roleSet(employee.RoleHR, employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	DeptIT:      roleSet(employee.RoleOrgAdmin, employee.RolePlatformAdmin),
	DeptAdmin:   roleSet(employee.RoleOrgAdmin, employee.RolePlatformAdmin),
}

var clearanceTaskTransitions = map[string][]string{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusNotApplicable},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusNotApplicable},
}

func roleSet(roles ...string) map[string]bool {
	set := make(map[string]bool, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

func isAllowedTaskTransition(currentStatus, targetStatus string) bool {
	for _, allowed := range clearanceTaskTransitions[currentStatus] {
		if allowed == targetStatus {
			return true
		}
	}
	return false
}

func canActOnTask(role, department string) bool {
	roles, ok := clearanceTaskRoles[department]
	if !ok {
		return role == employee.RoleOrgAdmin || role == employee.RolePlatformAdmin
	}
	return roles[role]
}
