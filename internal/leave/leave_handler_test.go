package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/achla24/LeaveEase/internal/leave"
	leaveerrors "github.com/achla24/LeaveEase/internal/leave/errors"
	notificationerrors "github.com/achla24/LeaveEase/internal/notification/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveService struct {
	createFn    func(ctx context.Context, actor leave.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	getAllFn    func(ctx context.Context, status string) ([]leave.LeaveResponse, error)
	getByIDFn   func(ctx context.Context, id string) (leave.LeaveResponse, error)
	getMineFn   func(ctx context.Context, actor leave.Actor) ([]leave.LeaveResponse, error)
	updateFn    func(ctx context.Context, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error)
	deleteFn    func(ctx context.Context, id string) error
	statsFn     func(ctx context.Context) (leave.StatsResponse, error)
	approveFn   func(ctx context.Context, actorID, id string) (leave.DecisionResponse, error)
	rejectFn    func(ctx context.Context, actorID, id, reason string) (leave.DecisionResponse, error)
	hrActionFn  func(ctx context.Context, actorID, id string, req leave.HRActionRequest) (leave.DecisionResponse, error)
	aiApproveFn func(ctx context.Context, actorID, id string) (leave.DecisionResult, error)
	aiRejectFn  func(ctx context.Context, actorID, id, reason string) (leave.DecisionResult, error)
	hrApproveFn func(ctx context.Context, actorID, id string) (leave.DecisionResult, error)
	hrRejectFn  func(ctx context.Context, actorID, id, reason string) (leave.DecisionResult, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, actor leave.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context, status string) ([]leave.LeaveResponse, error) {
	return f.getAllFn(ctx, status)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLeaveService) GetMine(ctx context.Context, actor leave.Actor) ([]leave.LeaveResponse, error) {
	return f.getMineFn(ctx, actor)
}
func (f *fakeLeaveService) Update(ctx context.Context, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeLeaveService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}
func (f *fakeLeaveService) Stats(ctx context.Context) (leave.StatsResponse, error) {
	return f.statsFn(ctx)
}
func (f *fakeLeaveService) Approve(ctx context.Context, actorID, id string) (leave.DecisionResponse, error) {
	return f.approveFn(ctx, actorID, id)
}
func (f *fakeLeaveService) Reject(ctx context.Context, actorID, id, reason string) (leave.DecisionResponse, error) {
	return f.rejectFn(ctx, actorID, id, reason)
}
func (f *fakeLeaveService) HRAction(ctx context.Context, actorID, id string, req leave.HRActionRequest) (leave.DecisionResponse, error) {
	return f.hrActionFn(ctx, actorID, id, req)
}
func (f *fakeLeaveService) AIApprove(ctx context.Context, actorID, id string) (leave.DecisionResult, error) {
	return f.aiApproveFn(ctx, actorID, id)
}
func (f *fakeLeaveService) AIReject(ctx context.Context, actorID, id, reason string) (leave.DecisionResult, error) {
	return f.aiRejectFn(ctx, actorID, id, reason)
}
func (f *fakeLeaveService) HRApprove(ctx context.Context, actorID, id string) (leave.DecisionResult, error) {
	return f.hrApproveFn(ctx, actorID, id)
}
func (f *fakeLeaveService) HRReject(ctx context.Context, actorID, id, reason string) (leave.DecisionResult, error) {
	return f.hrRejectFn(ctx, actorID, id, reason)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, rec
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success uses caller identity", func(t *testing.T) {
		userID := uuid.NewString()
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, actor leave.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, userID, actor.ID)
				assert.Equal(t, "John Doe", actor.FullName)
				assert.Equal(t, "2025-08-15", req.StartDate)
				return leave.LeaveResponse{ID: "leave-1", EmployeeName: actor.FullName, Status: leave.StatusPending}, nil
			},
		}
		h := leave.NewHandler(svc)

		c, rec := newTestContext(http.MethodPost, "/leaves", `{"startDate":"2025-08-15","endDate":"2025-08-20","reason":"Family vacation"}`)
		c.Set("user_id", userID)
		c.Set("username", "jdoe")
		c.Set("full_name", "John Doe")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/v1/leaves/leave-1", rec.Header().Get("Location"))
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Pending", got.Status)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})

		c, rec := newTestContext(http.MethodPost, "/leaves", `{"startDate":"2025-08-15","endDate":"2025-08-20","reason":"x","status":"Approved"}`)
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("missing reason", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})

		c, rec := newTestContext(http.MethodPost, "/leaves", `{"startDate":"2025-08-15","endDate":"2025-08-20"}`)
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid range from service", func(t *testing.T) {
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, actor leave.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrInvalidDateRange
			},
		}
		h := leave.NewHandler(svc)

		c, rec := newTestContext(http.MethodPost, "/leaves", `{"startDate":"2025-08-20","endDate":"2025-08-15","reason":"x"}`)
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "INVALID_DATE", env.Error.Code)
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	var gotStatus string
	svc := &fakeLeaveService{
		getAllFn: func(ctx context.Context, status string) ([]leave.LeaveResponse, error) {
			gotStatus = status
			return []leave.LeaveResponse{
				{ID: "1", Status: leave.StatusPending},
				{ID: "3", Status: leave.StatusPending},
			}, nil
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/leaves?status=Pending&page=1&page_size=1", "")
	h.GetAll(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leave.StatusPending, gotStatus)
	env := decodeEnvelope(t, rec.Body.Bytes())
	var items []leave.LeaveResponse
	assert.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Contains(t, string(env.Meta), `"total":2`)
}

func TestLeaveHandler_GetAllPagingBounds(t *testing.T) {
	svc := &fakeLeaveService{
		getAllFn: func(ctx context.Context, status string) ([]leave.LeaveResponse, error) {
			items := make([]leave.LeaveResponse, 150)
			for i := range items {
				items[i] = leave.LeaveResponse{ID: strconv.Itoa(i + 1)}
			}
			return items, nil
		},
	}
	h := leave.NewHandler(svc)

	tests := []struct {
		name  string
		query string
		want  int
		first string
	}{
		{name: "huge page", query: "page=922337203685477581&page_size=10", want: 0},
		{name: "huge page size is capped", query: "page=1&page_size=9223372036854775807", want: 100, first: "1"},
		{name: "huge page and size", query: "page=9223372036854775807&page_size=9223372036854775807", want: 0},
		{name: "negative values fall back", query: "page=-3&page_size=-5", want: 10, first: "1"},
		{name: "non numeric values fall back", query: "page=abc&page_size=x", want: 10, first: "1"},
		{name: "last partial page", query: "page=2&page_size=100", want: 50, first: "101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/leaves?"+tt.query, "")
			assert.NotPanics(t, func() { h.GetAll(c) })

			assert.Equal(t, http.StatusOK, rec.Code)
			env := decodeEnvelope(t, rec.Body.Bytes())
			var items []leave.LeaveResponse
			assert.NoError(t, json.Unmarshal(env.Data, &items))
			assert.Len(t, items, tt.want)
			if tt.first != "" {
				assert.Equal(t, tt.first, items[0].ID)
			}
			assert.Contains(t, string(env.Meta), `"total":150`)
		})
	}
}

func TestLeaveHandler_GetByID(t *testing.T) {
	svc := &fakeLeaveService{
		getByIDFn: func(ctx context.Context, id string) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/leaves/x", "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec.Body.Bytes())
	assert.Equal(t, "LEAVE_NOT_FOUND", env.Error.Code)
}

func TestLeaveHandler_Reject(t *testing.T) {
	id := uuid.NewString()
	actorID := uuid.NewString()
	svc := &fakeLeaveService{
		rejectFn: func(ctx context.Context, gotActor, gotID, reason string) (leave.DecisionResponse, error) {
			assert.Equal(t, actorID, gotActor)
			assert.Equal(t, id, gotID)
			assert.Equal(t, "Insufficient notice period", reason)
			return leave.DecisionResponse{LeaveResponse: leave.LeaveResponse{ID: id, Status: leave.StatusRejected, RejectionReason: &reason}}, nil
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/leaves/"+id+"/reject", `{"rejectionReason":"Insufficient notice period"}`)
	c.Params = gin.Params{{Key: "id", Value: id}}
	c.Set("user_id", actorID)
	h.Reject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec.Body.Bytes())
	var got map[string]any
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Rejected", got["status"])
	assert.Equal(t, "Insufficient notice period", got["rejectionReason"])
	_, hasNotification := got["notification"]
	assert.False(t, hasNotification)
}

func TestLeaveHandler_HRAction(t *testing.T) {
	svc := &fakeLeaveService{
		hrActionFn: func(ctx context.Context, actorID, id string, req leave.HRActionRequest) (leave.DecisionResponse, error) {
			return leave.DecisionResponse{}, leaveerrors.ErrInvalidAction
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/leaves/1/hr-action", `{"action":"cancel"}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.HRAction(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec.Body.Bytes())
	assert.Equal(t, "Invalid action. Use 'approve' or 'reject'", env.Error.Message)
}

func TestLeaveHandler_AIApprove(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			aiApproveFn: func(ctx context.Context, actorID, id string) (leave.DecisionResult, error) {
				return leave.DecisionResult{
					Success:       true,
					Message:       "Leave approved and AI-powered email sent successfully",
					AIMethod:      "Smart Template",
					EmployeeEmail: "john.doe@company.com",
					LeaveRequest:  &leave.LeaveResponse{ID: id, Status: leave.StatusApproved},
				}, nil
			},
		}
		h := leave.NewHandler(svc)

		c, rec := newTestContext(http.MethodPut, "/leaves/1/ai-approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		h.AIApprove(c)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		var got leave.DecisionResult
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.True(t, got.Success)
		assert.Equal(t, "Smart Template", got.AIMethod)
		assert.Equal(t, "Approved", got.LeaveRequest.Status)
	})

	t.Run("delivery failure carries result in details", func(t *testing.T) {
		result := leave.DecisionResult{
			Message:      "Leave approved but email failed: Email delivery failed: smtp 554",
			AIMethod:     "Basic Template",
			LeaveRequest: &leave.LeaveResponse{ID: "1", Status: leave.StatusApproved},
		}
		svc := &fakeLeaveService{
			aiApproveFn: func(ctx context.Context, actorID, id string) (leave.DecisionResult, error) {
				return result, &leave.NotificationError{Result: result, Err: notificationerrors.ErrDeliveryFailed}
			},
		}
		h := leave.NewHandler(svc)

		c, rec := newTestContext(http.MethodPut, "/leaves/1/ai-approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		h.AIApprove(c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "NOTIFICATION_FAILED", env.Error.Code)
		assert.Equal(t, result.Message, env.Error.Message)
		var details leave.DecisionResult
		assert.NoError(t, json.Unmarshal(env.Error.Details, &details))
		assert.False(t, details.Success)
		assert.Equal(t, "Approved", details.LeaveRequest.Status)
	})

	t.Run("employee not found is not an error", func(t *testing.T) {
		svc := &fakeLeaveService{
			aiApproveFn: func(ctx context.Context, actorID, id string) (leave.DecisionResult, error) {
				return leave.DecisionResult{Message: "Employee not found"}, nil
			},
		}
		h := leave.NewHandler(svc)

		c, rec := newTestContext(http.MethodPut, "/leaves/1/ai-approve", "")
		h.AIApprove(c)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), `"success":false`)
	})
}

func TestLeaveHandler_HRReject(t *testing.T) {
	svc := &fakeLeaveService{
		hrRejectFn: func(ctx context.Context, actorID, id, reason string) (leave.DecisionResult, error) {
			return leave.DecisionResult{}, errors.New("db down")
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/leaves/1/hr-reject", `{"rejectionReason":"Staffing"}`)
	h.HRReject(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec.Body.Bytes())
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}

func TestLeaveHandler_Stats(t *testing.T) {
	svc := &fakeLeaveService{
		statsFn: func(ctx context.Context) (leave.StatsResponse, error) {
			return leave.StatsResponse{Total: 3, Pending: 1, Approved: 2, CurrentlyOnLeave: 1}, nil
		},
	}
	h := leave.NewHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/leaves/stats", "")
	h.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec.Body.Bytes())
	assert.Contains(t, string(env.Data), `"currentlyOnLeave":1`)
}
