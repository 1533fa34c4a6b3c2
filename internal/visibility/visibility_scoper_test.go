package visibility_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/visibility"
)

type fakeVisibilityRepository struct {
	findDirectReportIDsFn func(ctx context.Context, companyID, managerID string) ([]string, error)
	hasManagerFn          func(ctx context.Context, companyID, employeeID string) (bool, error)
}

func (f *fakeVisibilityRepository) FindDirectReportIDs(ctx context.Context, companyID, managerID string) ([]string, error) {
	if f.findDirectReportIDsFn != nil {
		return f.findDirectReportIDsFn(ctx, companyID, managerID)
	}
	return nil, nil
}

func (f *fakeVisibilityRepository) HasManager(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.hasManagerFn != nil {
		return f.hasManagerFn(ctx, companyID, employeeID)
	}
	return false, nil
}

func TestScoper_VisibleEmployeeIDs(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	callerID := uuid.New().String()

	caller := func(role string) visibility.Caller {
		return visibility.Caller{EmployeeID: callerID, CompanyID: companyID, Role: role}
	}

	t.Run("hr is unrestricted in both modes", func(t *testing.T) {
		scoper := visibility.NewScoper(&fakeVisibilityRepository{})

		for _, mode := range []visibility.Mode{visibility.ModeGlobal, visibility.ModeDirectReports} {
			scope, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleHR), mode)
			assert.NoError(t, err)
			assert.True(t, scope.Unrestricted)
			assert.True(t, scope.Allows(uuid.New().String()))
		}
	})

	t.Run("manager sees exactly direct reports, one level only", func(t *testing.T) {
		report1 := uuid.New().String()
		report2 := uuid.New().String()
		grandReport := uuid.New().String()

		repo := &fakeVisibilityRepository{
			findDirectReportIDsFn: func(ctx context.Context, cid, managerID string) ([]string, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, callerID, managerID)
				return []string{report1, report2}, nil
			},
		}
		scoper := visibility.NewScoper(repo)

		scope, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleManager), visibility.ModeDirectReports)

		assert.NoError(t, err)
		assert.False(t, scope.Unrestricted)
		assert.ElementsMatch(t, []string{report1, report2}, scope.EmployeeIDs)
		assert.True(t, scope.Allows(report1))
		assert.True(t, scope.Allows(report2))
		assert.False(t, scope.Allows(grandReport))
	})

	t.Run("org admin is global in global mode but scoped in direct-reports mode", func(t *testing.T) {
		report := uuid.New().String()
		repo := &fakeVisibilityRepository{
			findDirectReportIDsFn: func(ctx context.Context, cid, managerID string) ([]string, error) {
				return []string{report}, nil
			},
		}
		scoper := visibility.NewScoper(repo)

		global, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleOrgAdmin), visibility.ModeGlobal)
		assert.NoError(t, err)
		assert.True(t, global.Unrestricted)

		scoped, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleOrgAdmin), visibility.ModeDirectReports)
		assert.NoError(t, err)
		assert.False(t, scoped.Unrestricted)
		assert.Equal(t, []string{report}, scoped.EmployeeIDs)
	})

	t.Run("platform admin mirrors org admin", func(t *testing.T) {
		repo := &fakeVisibilityRepository{
			findDirectReportIDsFn: func(ctx context.Context, cid, managerID string) ([]string, error) {
				return []string{}, nil
			},
			hasManagerFn: func(ctx context.Context, cid, employeeID string) (bool, error) {
				return true, nil
			},
		}
		scoper := visibility.NewScoper(repo)

		global, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RolePlatformAdmin), visibility.ModeGlobal)
		assert.NoError(t, err)
		assert.True(t, global.Unrestricted)

		scoped, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RolePlatformAdmin), visibility.ModeDirectReports)
		assert.NoError(t, err)
		assert.False(t, scoped.Unrestricted)
		assert.Empty(t, scoped.EmployeeIDs)
	})

	t.Run("individual contributor sees only self", func(t *testing.T) {
		scoper := visibility.NewScoper(&fakeVisibilityRepository{})

		scope, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleEmployee), visibility.ModeDirectReports)

		assert.NoError(t, err)
		assert.False(t, scope.Unrestricted)
		assert.Equal(t, []string{callerID}, scope.EmployeeIDs)
		assert.True(t, scope.Allows(callerID))
		assert.False(t, scope.Allows(uuid.New().String()))
	})

	t.Run("root-level manager with no reports gets empty scope", func(t *testing.T) {
		hasManagerCalled := false
		repo := &fakeVisibilityRepository{
			findDirectReportIDsFn: func(ctx context.Context, cid, managerID string) ([]string, error) {
				return nil, nil
			},
			hasManagerFn: func(ctx context.Context, cid, employeeID string) (bool, error) {
				hasManagerCalled = true
				return false, nil
			},
		}
		scoper := visibility.NewScoper(repo)

		scope, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleManager), visibility.ModeDirectReports)

		assert.NoError(t, err)
		assert.True(t, hasManagerCalled)
		assert.False(t, scope.Unrestricted)
		assert.Empty(t, scope.EmployeeIDs)
		assert.False(t, scope.Allows(callerID))
	})

	t.Run("negative repo error", func(t *testing.T) {
		repo := &fakeVisibilityRepository{
			findDirectReportIDsFn: func(ctx context.Context, cid, managerID string) ([]string, error) {
				return nil, errors.New("db down")
			},
		}
		scoper := visibility.NewScoper(repo)

		_, err := scoper.VisibleEmployeeIDs(ctx, caller(employee.RoleManager), visibility.ModeDirectReports)

		assert.Error(t, err)
	})
}

func TestScope_Allows(t *testing.T) {
	id := uuid.New().String()

	assert.True(t, visibility.Scope{Unrestricted: true}.Allows(id))
	assert.True(t, visibility.Scope{EmployeeIDs: []string{id}}.Allows(id))
	assert.False(t, visibility.Scope{EmployeeIDs: []string{}}.Allows(id))
	assert.False(t, visibility.Scope{}.Allows(id))
}
