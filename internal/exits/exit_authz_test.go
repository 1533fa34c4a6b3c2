package exits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/visibility"
)

func TestTransitionRules(t *testing.T) {
	cases := []struct {
		action string
		from   string
		to     string
		scoped bool
	}{
		{ActionManagerApprove, StatusPendingManager, StatusManagerApproved, true},
		{ActionManagerReject, StatusPendingManager, StatusManagerRejected, true},
		{ActionHRProcess, StatusManagerApproved, StatusHRProcessing, false},
		{ActionStartClearance, StatusHRProcessing, StatusClearancePending, false},
		{ActionCompleteClearance, StatusClearancePending, StatusClearanceCompleted, false},
		{ActionCompleteExit, StatusClearanceCompleted, StatusCompleted, false},
	}

	assert.Len(t, transitionRules, len(cases))

	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			rule, ok := transitionRules[tc.action]
			assert.True(t, ok)
			assert.Equal(t, tc.from, rule.From)
			assert.Equal(t, tc.to, rule.To)
			assert.Equal(t, tc.scoped, rule.Scoped)
			if tc.scoped {
				assert.Equal(t, visibility.ModeDirectReports, rule.Mode)
			}
		})
	}
}

func TestTransitionRules_Roles(t *testing.T) {
	// Manager decisions belong to managers and admins; everything after the
	// manager gate belongs to HR and admins.
	managerGate := transitionRules[ActionManagerApprove].Roles
	assert.True(t, managerGate[employee.RoleManager])
	assert.True(t, managerGate[employee.RoleOrgAdmin])
	assert.True(t, managerGate[employee.RolePlatformAdmin])
	assert.False(t, managerGate[employee.RoleHR])
	assert.False(t, managerGate[employee.RoleEmployee])

	for _, action := range []string{ActionHRProcess, ActionStartClearance, ActionCompleteClearance, ActionCompleteExit} {
		roles := transitionRules[action].Roles
		assert.True(t, roles[employee.RoleHR], action)
		assert.True(t, roles[employee.RoleOrgAdmin], action)
		assert.False(t, roles[employee.RoleManager], action)
		assert.False(t, roles[employee.RoleAccountant], action)
	}
}

func TestIsAllowedTaskTransition(t *testing.T) {
	assert.True(t, isAllowedTaskTransition(TaskStatusPending, TaskStatusInProgress))
	assert.True(t, isAllowedTaskTransition(TaskStatusPending, TaskStatusNotApplicable))
	assert.True(t, isAllowedTaskTransition(TaskStatusInProgress, TaskStatusCompleted))
	assert.True(t, isAllowedTaskTransition(TaskStatusInProgress, TaskStatusNotApplicable))

	assert.False(t, isAllowedTaskTransition(TaskStatusPending, TaskStatusCompleted))
	assert.False(t, isAllowedTaskTransition(TaskStatusCompleted, TaskStatusInProgress))
	assert.False(t, isAllowedTaskTransition(TaskStatusNotApplicable, TaskStatusCompleted))
	assert.False(t, isAllowedTaskTransition(TaskStatusCompleted, TaskStatusPending))
}

func TestCanActOnTask(t *testing.T) {
	assert.True(t, canActOnTask(employee.RoleAccountant, DeptFinance))
	assert.False(t, canActOnTask(employee.RoleAccountant, DeptHR))
	assert.True(t, canActOnTask(employee.RoleHR, DeptHR))
	assert.False(t, canActOnTask(employee.RoleHR, DeptIT))
	assert.False(t, canActOnTask(employee.RoleManager, DeptIT))

	for _, dept := range DefaultClearanceDepartments {
		assert.True(t, canActOnTask(employee.RoleOrgAdmin, dept), dept)
		assert.True(t, canActOnTask(employee.RolePlatformAdmin, dept), dept)
		assert.False(t, canActOnTask(employee.RoleEmployee, dept), dept)
	}

	// Unknown department tags fall back to admin-only.
	assert.True(t, canActOnTask(employee.RoleOrgAdmin, "FACILITIES"))
	assert.False(t, canActOnTask(employee.RoleHR, "FACILITIES"))
}
