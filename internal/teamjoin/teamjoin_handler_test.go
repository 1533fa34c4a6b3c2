package teamjoin_test

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

	"go-orgflow/internal/teamjoin"
	teamjoinerrors "go-orgflow/internal/teamjoin/errors"
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

type fakeTeamJoinService struct {
	proposeFn         func(ctx context.Context, companyID, managerEmployeeID string, req teamjoin.ProposeTeamJoinRequest) (teamjoin.TeamJoinResponse, error)
	respondFn         func(ctx context.Context, companyID, responderEmployeeID, id string, req teamjoin.RespondTeamJoinRequest) (teamjoin.TeamJoinResponse, error)
	cancelFn          func(ctx context.Context, companyID, managerEmployeeID, id string) error
	listForEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]teamjoin.TeamJoinResponse, error)
	listForManagerFn  func(ctx context.Context, companyID, managerID string) ([]teamjoin.TeamJoinResponse, error)
}

func (f *fakeTeamJoinService) Propose(ctx context.Context, companyID, managerEmployeeID string, req teamjoin.ProposeTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
	return f.proposeFn(ctx, companyID, managerEmployeeID, req)
}

func (f *fakeTeamJoinService) Respond(ctx context.Context, companyID, responderEmployeeID, id string, req teamjoin.RespondTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
	return f.respondFn(ctx, companyID, responderEmployeeID, id, req)
}

func (f *fakeTeamJoinService) Cancel(ctx context.Context, companyID, managerEmployeeID, id string) error {
	return f.cancelFn(ctx, companyID, managerEmployeeID, id)
}

func (f *fakeTeamJoinService) ListForEmployee(ctx context.Context, companyID, employeeID string) ([]teamjoin.TeamJoinResponse, error) {
	return f.listForEmployeeFn(ctx, companyID, employeeID)
}

func (f *fakeTeamJoinService) ListForManager(ctx context.Context, companyID, managerID string) ([]teamjoin.TeamJoinResponse, error) {
	return f.listForManagerFn(ctx, companyID, managerID)
}

func TestTeamJoinHandler_Propose(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		managerID := uuid.New().String()
		employeeID := uuid.New().String()

		svc := &fakeTeamJoinService{
			proposeFn: func(ctx context.Context, cid, mid string, req teamjoin.ProposeTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, managerID, mid)
				assert.Equal(t, employeeID, req.EmployeeID)
				return teamjoin.TeamJoinResponse{
					ID:         uuid.New().String(),
					CompanyID:  cid,
					EmployeeID: req.EmployeeID,
					ManagerID:  mid,
					Status:     teamjoin.StatusPending,
					Message:    req.Message,
				}, nil
			},
		}

		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + employeeID + `","message":"Join my squad"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("employee_id", managerID)

		h.Propose(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got teamjoin.TeamJoinResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, teamjoin.StatusPending, got.Status)
		assert.Equal(t, employeeID, got.EmployeeID)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := teamjoin.NewHandler(&fakeTeamJoinService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Propose(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative duplicate maps to conflict", func(t *testing.T) {
		svc := &fakeTeamJoinService{
			proposeFn: func(ctx context.Context, cid, mid string, req teamjoin.ProposeTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
				return teamjoin.TeamJoinResponse{}, teamjoinerrors.ErrDuplicateProposal
			},
		}
		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + uuid.New().String() + `"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())

		h.Propose(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "a pending proposal already exists for this employee and manager", env.Error.Message)
	})
}

func TestTeamJoinHandler_Respond(t *testing.T) {
	t.Run("accept success uses user_id_validated fallback", func(t *testing.T) {
		companyID := uuid.New().String()
		responderID := uuid.New().String()
		requestID := uuid.New().String()

		svc := &fakeTeamJoinService{
			respondFn: func(ctx context.Context, cid, rid, id string, req teamjoin.RespondTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, responderID, rid)
				assert.Equal(t, requestID, id)
				assert.Equal(t, teamjoin.ActionAccept, req.Action)
				return teamjoin.TeamJoinResponse{ID: id, CompanyID: cid, Status: teamjoin.StatusAccepted}, nil
			},
		}

		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests/"+requestID+"/respond", strings.NewReader(`{"action":"accept"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("company_id", companyID)
		c.Set("user_id_validated", responderID)

		h.Respond(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got teamjoin.TeamJoinResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, teamjoin.StatusAccepted, got.Status)
	})

	t.Run("negative action outside accept/reject", func(t *testing.T) {
		h := teamjoin.NewHandler(&fakeTeamJoinService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests/123/respond", strings.NewReader(`{"action":"maybe"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "123"}}

		h.Respond(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative not the owner maps to forbidden", func(t *testing.T) {
		svc := &fakeTeamJoinService{
			respondFn: func(ctx context.Context, cid, rid, id string, req teamjoin.RespondTeamJoinRequest) (teamjoin.TeamJoinResponse, error) {
				return teamjoin.TeamJoinResponse{}, teamjoinerrors.ErrNotRequestOwner
			},
		}
		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests/123/respond", strings.NewReader(`{"action":"accept"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "123"}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())

		h.Respond(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestTeamJoinHandler_Cancel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		managerID := uuid.New().String()
		requestID := uuid.New().String()

		svc := &fakeTeamJoinService{
			cancelFn: func(ctx context.Context, cid, mid, id string) error {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, managerID, mid)
				assert.Equal(t, requestID, id)
				return nil
			},
		}

		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests/"+requestID+"/cancel", nil)
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("company_id", companyID)
		c.Set("employee_id", managerID)

		h.Cancel(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative no longer pending", func(t *testing.T) {
		svc := &fakeTeamJoinService{
			cancelFn: func(ctx context.Context, cid, mid, id string) error {
				return teamjoinerrors.ErrRequestNotPending
			},
		}
		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/team-join-requests/123/cancel", nil)
		c.Params = []gin.Param{{Key: "id", Value: "123"}}
		c.Set("company_id", uuid.New().String())
		c.Set("employee_id", uuid.New().String())

		h.Cancel(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}

func TestTeamJoinHandler_List(t *testing.T) {
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("inbox by default", func(t *testing.T) {
		svc := &fakeTeamJoinService{
			listForEmployeeFn: func(ctx context.Context, cid, eid string) ([]teamjoin.TeamJoinResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, actorID, eid)
				return []teamjoin.TeamJoinResponse{{ID: uuid.New().String(), Status: teamjoin.StatusPending}}, nil
			},
		}

		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/team-join-requests", nil)
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)

		h.List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got []teamjoin.TeamJoinResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("sent box lists own proposals", func(t *testing.T) {
		svc := &fakeTeamJoinService{
			listForManagerFn: func(ctx context.Context, cid, mid string) ([]teamjoin.TeamJoinResponse, error) {
				assert.Equal(t, actorID, mid)
				return []teamjoin.TeamJoinResponse{}, nil
			},
		}

		h := teamjoin.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/team-join-requests?box=sent", nil)
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)

		h.List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})
}
