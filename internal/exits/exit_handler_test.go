package exits_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-orgflow/internal/exits"
	exiterrors "go-orgflow/internal/exits/errors"
	"go-orgflow/internal/visibility"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeExitService struct {
	createFn              func(ctx context.Context, companyID, actorID string, req exits.CreateExitRequest) (exits.ExitResponse, error)
	getAllFn              func(ctx context.Context, caller visibility.Caller) ([]exits.ExitResponse, error)
	getByIDFn             func(ctx context.Context, caller visibility.Caller, id string) (exits.ExitResponse, error)
	transitionFn          func(ctx context.Context, caller visibility.Caller, id string, req exits.TransitionExitRequest) (exits.ExitResponse, error)
	updateClearanceTaskFn func(ctx context.Context, caller visibility.Caller, taskID string, req exits.UpdateClearanceTaskRequest) (exits.ClearanceTaskResponse, error)
}

func (f *fakeExitService) Create(ctx context.Context, companyID, actorID string, req exits.CreateExitRequest) (exits.ExitResponse, error) {
	return f.createFn(ctx, companyID, actorID, req)
}

func (f *fakeExitService) GetAll(ctx context.Context, caller visibility.Caller) ([]exits.ExitResponse, error) {
	return f.getAllFn(ctx, caller)
}

func (f *fakeExitService) GetByID(ctx context.Context, caller visibility.Caller, id string) (exits.ExitResponse, error) {
	return f.getByIDFn(ctx, caller, id)
}

func (f *fakeExitService) Transition(ctx context.Context, caller visibility.Caller, id string, req exits.TransitionExitRequest) (exits.ExitResponse, error) {
	return f.transitionFn(ctx, caller, id, req)
}

func (f *fakeExitService) UpdateClearanceTask(ctx context.Context, caller visibility.Caller, taskID string, req exits.UpdateClearanceTaskRequest) (exits.ClearanceTaskResponse, error) {
	return f.updateClearanceTaskFn(ctx, caller, taskID, req)
}

func TestExitHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		actorID := uuid.New().String()
		employeeID := uuid.New().String()

		svc := &fakeExitService{
			createFn: func(ctx context.Context, cid, aid string, req exits.CreateExitRequest) (exits.ExitResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, actorID, aid)
				assert.Equal(t, employeeID, req.EmployeeID)
				assert.Equal(t, "2026-10-31", req.LastWorkingDate)
				return exits.ExitResponse{
					ID:         uuid.New().String(),
					EmployeeID: req.EmployeeID,
					ExitNumber: "EXIT-000007",
					Status:     exits.StatusPendingManager,
				}, nil
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + employeeID + `","reason":"Relocating abroad","last_working_date":"2026-10-31"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)
		c.Set("role", "MANAGER")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got exits.ExitResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, "EXIT-000007", got.ExitNumber)
		assert.Equal(t, exits.StatusPendingManager, got.Status)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := exits.NewHandler(&fakeExitService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests", strings.NewReader(`{"reason":"no employee"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "Input tidak valid", env.Error.Message)
	})

	t.Run("negative already open maps to conflict", func(t *testing.T) {
		svc := &fakeExitService{
			createFn: func(ctx context.Context, cid, aid string, req exits.CreateExitRequest) (exits.ExitResponse, error) {
				return exits.ExitResponse{}, exiterrors.ErrExitAlreadyOpen
			},
		}
		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + uuid.New().String() + `","reason":"dup","last_working_date":"2026-10-31"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestExitHandler_GetAll(t *testing.T) {
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	svc := &fakeExitService{
		getAllFn: func(ctx context.Context, caller visibility.Caller) ([]exits.ExitResponse, error) {
			assert.Equal(t, companyID, caller.CompanyID)
			assert.Equal(t, actorID, caller.EmployeeID)
			assert.Equal(t, "HR", caller.Role)
			return []exits.ExitResponse{{ID: uuid.New().String(), Status: exits.StatusPendingManager}}, nil
		},
	}

	h := exits.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/exit-requests", nil)
	c.Set("company_id", companyID)
	c.Set("employee_id", actorID)
	c.Set("role", "HR")

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	var got []exits.ExitResponse
	err := json.Unmarshal(env.Data, &got)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestExitHandler_GetByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		exitID := uuid.New().String()
		svc := &fakeExitService{
			getByIDFn: func(ctx context.Context, caller visibility.Caller, id string) (exits.ExitResponse, error) {
				assert.Equal(t, exitID, id)
				return exits.ExitResponse{ID: id, Status: exits.StatusClearancePending}, nil
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/exit-requests/"+exitID, nil)
		c.Params = []gin.Param{{Key: "id", Value: exitID}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())

		h.GetByID(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeExitService{
			getByIDFn: func(ctx context.Context, caller visibility.Caller, id string) (exits.ExitResponse, error) {
				return exits.ExitResponse{}, exiterrors.ErrExitNotFound
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/exit-requests/123", nil)
		c.Params = []gin.Param{{Key: "id", Value: "123"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestExitHandler_Transition(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		exitID := uuid.New().String()
		managerID := uuid.New().String()

		svc := &fakeExitService{
			transitionFn: func(ctx context.Context, caller visibility.Caller, id string, req exits.TransitionExitRequest) (exits.ExitResponse, error) {
				assert.Equal(t, exitID, id)
				assert.Equal(t, managerID, caller.EmployeeID)
				assert.Equal(t, "MANAGER", caller.Role)
				assert.Equal(t, exits.ActionManagerApprove, req.Action)
				return exits.ExitResponse{ID: id, Status: exits.StatusManagerApproved, ManagerActionBy: &managerID}, nil
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests/"+exitID+"/transition", strings.NewReader(`{"action":"MANAGER_APPROVE"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: exitID}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", managerID)
		c.Set("role", "MANAGER")

		h.Transition(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got exits.ExitResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, exits.StatusManagerApproved, got.Status)
	})

	t.Run("negative missing action", func(t *testing.T) {
		h := exits.NewHandler(&fakeExitService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests/123/transition", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "123"}}

		h.Transition(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative role not allowed maps to forbidden", func(t *testing.T) {
		svc := &fakeExitService{
			transitionFn: func(ctx context.Context, caller visibility.Caller, id string, req exits.TransitionExitRequest) (exits.ExitResponse, error) {
				return exits.ExitResponse{}, exiterrors.ErrActionNotAllowedForRole
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests/123/transition", strings.NewReader(`{"action":"HR_PROCESS"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "123"}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())
		c.Set("role", "EMPLOYEE")

		h.Transition(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("negative unknown error maps to internal", func(t *testing.T) {
		svc := &fakeExitService{
			transitionFn: func(ctx context.Context, caller visibility.Caller, id string, req exits.TransitionExitRequest) (exits.ExitResponse, error) {
				return exits.ExitResponse{}, context.DeadlineExceeded
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/exit-requests/123/transition", strings.NewReader(`{"action":"HR_PROCESS"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "123"}}

		h.Transition(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.Equal(t, "Internal server error", env.Error.Message)
	})
}

func TestExitHandler_UpdateClearanceTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		taskID := uuid.New().String()
		actorID := uuid.New().String()

		svc := &fakeExitService{
			updateClearanceTaskFn: func(ctx context.Context, caller visibility.Caller, tid string, req exits.UpdateClearanceTaskRequest) (exits.ClearanceTaskResponse, error) {
				assert.Equal(t, taskID, tid)
				assert.Equal(t, actorID, caller.EmployeeID)
				assert.Equal(t, exits.TaskStatusCompleted, req.Status)
				assert.Equal(t, "Laptop returned", req.Remarks)
				return exits.ClearanceTaskResponse{ID: tid, Department: exits.DeptIT, Status: req.Status, Remarks: req.Remarks}, nil
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/clearance-tasks/"+taskID, strings.NewReader(`{"status":"COMPLETED","remarks":"Laptop returned"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "taskId", Value: taskID}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", actorID)
		c.Set("role", "ORG_ADMIN")

		h.UpdateClearanceTask(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got exits.ClearanceTaskResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, exits.TaskStatusCompleted, got.Status)
	})

	t.Run("negative status outside allowed set", func(t *testing.T) {
		h := exits.NewHandler(&fakeExitService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/clearance-tasks/123", strings.NewReader(`{"status":"DONE"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "taskId", Value: "123"}}

		h.UpdateClearanceTask(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative role cannot act on department", func(t *testing.T) {
		svc := &fakeExitService{
			updateClearanceTaskFn: func(ctx context.Context, caller visibility.Caller, tid string, req exits.UpdateClearanceTaskRequest) (exits.ClearanceTaskResponse, error) {
				return exits.ClearanceTaskResponse{}, exiterrors.ErrTaskRoleNotAllowed
			},
		}

		h := exits.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/clearance-tasks/123", strings.NewReader(`{"status":"IN_PROGRESS"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "taskId", Value: "123"}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())
		c.Set("role", "HR")

		h.UpdateClearanceTask(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}
