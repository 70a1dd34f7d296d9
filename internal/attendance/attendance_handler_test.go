package attendance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/achla24/LeaveEase/internal/attendance"
	attendanceerrors "github.com/achla24/LeaveEase/internal/attendance/errors"
	"github.com/achla24/LeaveEase/internal/rbac"
	"github.com/achla24/LeaveEase/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
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

type fakeService struct {
	markLateFn  func(ctx context.Context, actor attendance.Actor, req attendance.MarkLateRequest) (attendance.LateAttendanceResponse, error)
	getMineFn   func(ctx context.Context, actor attendance.Actor) ([]attendance.LateAttendanceResponse, error)
	getByEmpFn  func(ctx context.Context, name string) ([]attendance.LateAttendanceResponse, error)
	getByDateFn func(ctx context.Context, date string) ([]attendance.LateAttendanceResponse, error)
	getRangeFn  func(ctx context.Context, startDate, endDate string) ([]attendance.LateAttendanceResponse, error)
	checkFn     func(ctx context.Context, actor attendance.Actor, date string) (attendance.LateCheckResponse, error)
	countFn     func(ctx context.Context, actor attendance.Actor, year, month int) (attendance.LateCountResponse, error)
	updateFn    func(ctx context.Context, id string, req attendance.UpdateLateRequest) (attendance.LateAttendanceResponse, error)
	deleteFn    func(ctx context.Context, id string) error
}

func (f *fakeService) MarkLate(ctx context.Context, actor attendance.Actor, req attendance.MarkLateRequest) (attendance.LateAttendanceResponse, error) {
	if f.markLateFn != nil {
		return f.markLateFn(ctx, actor, req)
	}
	return attendance.LateAttendanceResponse{}, nil
}

func (f *fakeService) GetMine(ctx context.Context, actor attendance.Actor) ([]attendance.LateAttendanceResponse, error) {
	if f.getMineFn != nil {
		return f.getMineFn(ctx, actor)
	}
	return nil, nil
}

func (f *fakeService) GetByEmployee(ctx context.Context, name string) ([]attendance.LateAttendanceResponse, error) {
	if f.getByEmpFn != nil {
		return f.getByEmpFn(ctx, name)
	}
	return nil, nil
}

func (f *fakeService) GetByDate(ctx context.Context, date string) ([]attendance.LateAttendanceResponse, error) {
	if f.getByDateFn != nil {
		return f.getByDateFn(ctx, date)
	}
	return nil, nil
}

func (f *fakeService) GetInRange(ctx context.Context, startDate, endDate string) ([]attendance.LateAttendanceResponse, error) {
	if f.getRangeFn != nil {
		return f.getRangeFn(ctx, startDate, endDate)
	}
	return nil, nil
}

func (f *fakeService) CheckMine(ctx context.Context, actor attendance.Actor, date string) (attendance.LateCheckResponse, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx, actor, date)
	}
	return attendance.LateCheckResponse{}, nil
}

func (f *fakeService) CountMine(ctx context.Context, actor attendance.Actor, year, month int) (attendance.LateCountResponse, error) {
	if f.countFn != nil {
		return f.countFn(ctx, actor, year, month)
	}
	return attendance.LateCountResponse{}, nil
}

func (f *fakeService) Update(ctx context.Context, id string, req attendance.UpdateLateRequest) (attendance.LateAttendanceResponse, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return attendance.LateAttendanceResponse{}, nil
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// newRouter mounts the late-attendance routes behind the real role policy,
// authenticating every request as the given role.
func newRouter(t *testing.T, svc attendance.Service, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e, err := infra.NewEnforcer()
	assert.NoError(t, err)

	r := gin.New()
	protected := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", "u-1")
		c.Set("username", "jdoe")
		c.Set("full_name", "John Doe")
		c.Set("role", role)
		c.Next()
	})
	attendance.RegisterRoutes(protected, attendance.NewHandler(svc, zap.NewNop()), rbac.NewService(e, zap.NewNop()))
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes_MarkLateIsHROnly(t *testing.T) {
	body := `{"employeeName":"Jane Roe","date":"2025-08-14","reason":"Bus strike"}`

	cases := []struct {
		role string
		want int
	}{
		{"EMPLOYEE", http.StatusForbidden},
		{"HR", http.StatusCreated},
		{"ADMIN", http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			called := false
			svc := &fakeService{markLateFn: func(ctx context.Context, actor attendance.Actor, req attendance.MarkLateRequest) (attendance.LateAttendanceResponse, error) {
				called = true
				assert.Equal(t, "John Doe", actor.FullName)
				return attendance.LateAttendanceResponse{EmployeeName: req.EmployeeName, Date: req.Date, MarkedBy: actor.FullName}, nil
			}}

			w := serve(newRouter(t, svc, tc.role), http.MethodPost, "/api/v1/late-attendance/mark-late", body)

			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want == http.StatusCreated, called)
		})
	}
}

func TestRoutes_EmployeeReadsOnlyOwnRecords(t *testing.T) {
	svc := &fakeService{
		getMineFn: func(ctx context.Context, actor attendance.Actor) ([]attendance.LateAttendanceResponse, error) {
			return []attendance.LateAttendanceResponse{{EmployeeName: actor.FullName, Date: "2025-08-14"}}, nil
		},
	}
	r := newRouter(t, svc, "EMPLOYEE")

	w := serve(r, http.MethodGet, "/api/v1/late-attendance/my-late-records", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "John Doe")

	for _, target := range []string{
		"/api/v1/late-attendance/employee/Jane%20Roe",
		"/api/v1/late-attendance/date/2025-08-14",
		"/api/v1/late-attendance/range?startDate=2025-08-01&endDate=2025-08-31",
	} {
		w := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusForbidden, w.Code, target)
	}
}

func TestHandler_GetByEmployee(t *testing.T) {
	var asked string
	svc := &fakeService{getByEmpFn: func(ctx context.Context, name string) ([]attendance.LateAttendanceResponse, error) {
		asked = name
		return []attendance.LateAttendanceResponse{{EmployeeName: name}}, nil
	}}

	w := serve(newRouter(t, svc, "HR"), http.MethodGet, "/api/v1/late-attendance/employee/Jane%20Roe", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane Roe", asked)
}

func TestHandler_MarkLateDuplicate(t *testing.T) {
	svc := &fakeService{markLateFn: func(context.Context, attendance.Actor, attendance.MarkLateRequest) (attendance.LateAttendanceResponse, error) {
		return attendance.LateAttendanceResponse{}, attendanceerrors.ErrAlreadyMarkedLate
	}}

	w := serve(newRouter(t, svc, "HR"), http.MethodPost, "/api/v1/late-attendance/mark-late", `{"employeeName":"Jane Roe","date":"2025-08-14"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_MARKED_LATE", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_MarkLateValidation(t *testing.T) {
	w := serve(newRouter(t, &fakeService{}, "HR"), http.MethodPost, "/api/v1/late-attendance/mark-late", `{"date":"2025-08-14"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_CheckAndCount(t *testing.T) {
	svc := &fakeService{
		checkFn: func(ctx context.Context, actor attendance.Actor, date string) (attendance.LateCheckResponse, error) {
			return attendance.LateCheckResponse{Date: date, IsLate: true}, nil
		},
		countFn: func(ctx context.Context, actor attendance.Actor, year, month int) (attendance.LateCountResponse, error) {
			return attendance.LateCountResponse{Year: year, Month: month, LateDaysCount: 2}, nil
		},
	}
	r := newRouter(t, svc, "EMPLOYEE")

	w := serve(r, http.MethodGet, "/api/v1/late-attendance/check/2025-08-14", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var check attendance.LateCheckResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &check))
	assert.True(t, check.IsLate)

	w = serve(r, http.MethodGet, "/api/v1/late-attendance/count/2025/8", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var count attendance.LateCountResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &count))
	assert.Equal(t, int64(2), count.LateDaysCount)
	assert.Equal(t, 8, count.Month)

	w = serve(r, http.MethodGet, "/api/v1/late-attendance/count/2025/aug", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_DeleteIsAdminOnly(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(newRouter(t, &fakeService{}, "HR"), http.MethodDelete, "/api/v1/late-attendance/0b6f0c1e-1c1f-4d55-9b0e-7d0b3c0d8e11", "").Code)
	assert.Equal(t, http.StatusOK, serve(newRouter(t, &fakeService{}, "ADMIN"), http.MethodDelete, "/api/v1/late-attendance/0b6f0c1e-1c1f-4d55-9b0e-7d0b3c0d8e11", "").Code)
}
