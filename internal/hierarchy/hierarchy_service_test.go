package hierarchy_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-orgflow/internal/employee"
	"go-orgflow/internal/hierarchy"
)

type fakeEmployeeRepository struct {
	withTxFn                 func(tx *sql.Tx) employee.Repository
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]employee.Employee, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*employee.Employee, error)
	findDirectReportsFn      func(ctx context.Context, companyID, managerID string) ([]employee.Employee, error)
	assignManagerFn          func(ctx context.Context, companyID, id string, managerID string) (int64, error)
	setEmploymentStatusFn    func(ctx context.Context, companyID, id, status string) error
	setUserAccountStatusFn   func(ctx context.Context, companyID, employeeID, status string) error
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindDirectReports(ctx context.Context, companyID, managerID string) ([]employee.Employee, error) {
	if f.findDirectReportsFn != nil {
		return f.findDirectReportsFn(ctx, companyID, managerID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) AssignManager(ctx context.Context, companyID, id string, managerID string) (int64, error) {
	if f.assignManagerFn != nil {
		return f.assignManagerFn(ctx, companyID, id, managerID)
	}
	return 1, nil
}

func (f *fakeEmployeeRepository) SetEmploymentStatus(ctx context.Context, companyID, id, status string) error {
	if f.setEmploymentStatusFn != nil {
		return f.setEmploymentStatusFn(ctx, companyID, id, status)
	}
	return nil
}

func (f *fakeEmployeeRepository) SetUserAccountStatus(ctx context.Context, companyID, employeeID, status string) error {
	if f.setUserAccountStatusFn != nil {
		return f.setUserAccountStatusFn(ctx, companyID, employeeID, status)
	}
	return nil
}

func TestHierarchyService_GetOrgChart(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	cacheKey := hierarchy.GetOrgChartKey(companyID)

	t.Run("cache hit skips store", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
				t.Fatal("store must not be queried on cache hit")
				return nil, nil
			},
		}

		cached := hierarchy.OrgChartResponse{
			Unassigned: []hierarchy.UnassignedEmployee{
				{ID: uuid.New().String(), FullName: "Ira Santoso", Role: employee.RoleAccountant, EmploymentStatus: employee.StatusActive},
			},
			Stats: hierarchy.OrgStats{TotalEmployees: 1, RootCount: 1},
		}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)
		redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		svc := hierarchy.NewService(repo, rdb)
		resp, err := svc.GetOrgChart(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp.Unassigned, 1)
		assert.Equal(t, cached.Unassigned[0].ID, resp.Unassigned[0].ID)
		assert.Equal(t, 1, resp.Stats.TotalEmployees)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache miss builds and stores", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()

		manager := newEmployee("Maya", "Lopez", employee.RoleManager, nil)
		report := newEmployee("Adi", "Pratama", employee.RoleEmployee, &manager.ID)
		empls := []employee.Employee{manager, report}

		repo := &fakeEmployeeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
				assert.Equal(t, companyID, cid)
				return empls, nil
			},
		}

		built := hierarchy.Build(empls)
		expected := hierarchy.OrgChartResponse{
			Forest:     built.Forest,
			Unassigned: built.Unassigned,
			Stats:      built.Stats,
		}
		expectedPayload, err := json.Marshal(expected)
		assert.NoError(t, err)

		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.ExpectSet(cacheKey, expectedPayload, 1*time.Hour).SetVal("OK")

		svc := hierarchy.NewService(repo, rdb)
		resp, err := svc.GetOrgChart(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp.Forest, 1)
		assert.Equal(t, manager.ID.String(), resp.Forest[0].ID)
		assert.Equal(t, 1, resp.Forest[0].TotalSubordinates)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative store error", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
				return nil, errors.New("db down")
			},
		}
		redisMock.ExpectGet(cacheKey).RedisNil()

		svc := hierarchy.NewService(repo, rdb)
		_, err := svc.GetOrgChart(ctx, companyID)

		assert.Error(t, err)
	})

	t.Run("nil redis degrades to direct build", func(t *testing.T) {
		loner := newEmployee("Ira", "Santoso", employee.RoleAccountant, nil)
		repo := &fakeEmployeeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
				return []employee.Employee{loner}, nil
			},
		}

		svc := hierarchy.NewService(repo, nil)
		resp, err := svc.GetOrgChart(ctx, companyID)

		assert.NoError(t, err)
		assert.Empty(t, resp.Forest)
		assert.Len(t, resp.Unassigned, 1)
	})
}

func TestHierarchyService_GetStats(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	manager := newEmployee("Maya", "Lopez", employee.RoleManager, nil)
	report := newEmployee("Adi", "Pratama", employee.RoleEmployee, &manager.ID)
	repo := &fakeEmployeeRepository{
		findAllByCompanyFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
			return []employee.Employee{manager, report}, nil
		},
	}

	svc := hierarchy.NewService(repo, nil)
	stats, err := svc.GetStats(ctx, companyID)

	assert.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEmployees)
	assert.Equal(t, 1, stats.ManagerCount)
	assert.Equal(t, 1, stats.RootCount)
}

func TestHierarchyService_InvalidateCache(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(hierarchy.GetOrgChartKey(companyID)).SetVal(1)

	svc := hierarchy.NewService(&fakeEmployeeRepository{}, rdb)
	svc.InvalidateCache(ctx, companyID)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}
