package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hrm-core/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hrm-core/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrm-core/internal/service/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeID = "emp-e"
	teamLeadID = "emp-t"
	hrID       = "emp-h"
	outsiderID = "emp-o"
	casualID   = "type-casual"
)

type testServer struct {
	handler http.Handler
	jwt     jwt.Service
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	tl := teamLeadID
	store.PutEmployee(employee.Employee{ID: teamLeadID, FullName: "Tari Lead", Role: employee.RoleTeamLead, IsActive: true})
	store.PutEmployee(employee.Employee{ID: employeeID, FullName: "Eka Staff", Role: employee.RoleEmployee, TeamLeadID: &tl, IsActive: true})
	store.PutEmployee(employee.Employee{ID: hrID, FullName: "Hana HR", Role: employee.RoleHR, IsActive: true})
	store.PutEmployee(employee.Employee{ID: outsiderID, FullName: "Oka Outsider", Role: employee.RoleEmployee, IsActive: true})
	store.PutLeaveType(leave.LeaveType{ID: casualID, Name: "Casual", IsActive: true})
	store.PutBalance(leave.LeaveBalance{EmployeeID: employeeID, LeaveTypeID: casualID, TotalAllocated: decimal.NewFromInt(12)})

	jwtSvc, err := jwt.NewJWTService("handler-test-secret", "1h")
	require.NoError(t, err)

	hub := sse.NewHub()
	dispatcher := notificationService.NewNotificationService(hub, nil, notificationService.Config{FlushInterval: 10 * time.Millisecond})
	t.Cleanup(dispatcher.Stop)

	leaves := leaveService.NewLeaveService(
		store,
		memory.NewLeaveTypeRepository(store),
		memory.NewLeaveRequestRepository(store),
		memory.NewLeaveBalanceRepository(store),
		memory.NewEmployeeRepository(store),
		memory.NewNotificationRepository(store),
		dispatcher,
		leaveService.Policy{AllowPastStart: true},
	)
	attendances := attendanceService.NewAttendanceService(
		store,
		memory.NewAttendanceRepository(store),
		memory.NewShiftRepository(store),
		memory.NewEmployeeRepository(store),
		attendanceService.Policy{},
	)

	handler := NewRouter(RouterConfig{
		Logger:              NewLogger(0, "test"),
		JWTService:          jwtSvc,
		LeaveHandler:        NewLeaveHandler(leaves),
		AttendanceHandler:   NewAttendanceHandler(attendances),
		NotificationHandler: NewNotificationHandler(dispatcher, jwtSvc),
		Store:               store,
		Hub:                 hub,
	})

	return &testServer{handler: handler, jwt: jwtSvc, store: store}
}

func (s *testServer) do(t *testing.T, method, path, actor string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		token, _, err := s.jwt.GenerateAccessToken(actor, "employee")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func dataField(t *testing.T, resp response.Response, key string) any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m[key]
}

func TestLeaveWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/leave/requests", employeeID, map[string]any{
		"leave_type_id": casualID,
		"start_date":    "2030-10-01",
		"end_date":      "2030-10-02",
		"reason":        "trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := dataField(t, resp, "id").(string)
	assert.Equal(t, "applied", dataField(t, resp, "status"))

	// HR before the team lead.
	rec, resp = s.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/action", hrID, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeWrongStage, resp.Error.Code)

	// Not the team lead.
	rec, _ = s.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/action", outsiderID, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests/pending", teamLeadID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/action", teamLeadID, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "tl_approved", dataField(t, resp, "status"))

	rec, resp = s.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/action", hrID, map[string]string{"action": "approve", "remarks": "enjoy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "hr_approved", dataField(t, resp, "status"))
	assert.Equal(t, true, dataField(t, resp, "balance_debited"))

	rec, resp = s.do(t, http.MethodGet, "/api/v1/leave/balances/my", employeeID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := resp.Data.([]any)
	require.Len(t, balances, 1)
	assert.Equal(t, "2", balances[0].(map[string]any)["used"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests/"+requestID, outsiderID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests/does-not-exist", employeeID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveHandler_BadInput(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/leave/requests", employeeID, map[string]any{
		"leave_type_id": casualID,
		"start_date":    "2030-10-05",
		"end_date":      "2030-10-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Error.Details, "end_date")

	rec, _ = s.do(t, http.MethodPost, "/api/v1/leave/requests/x/action", teamLeadID, map[string]string{"action": "escalate"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests", strings.NewReader("{"))
	token, _, _ := s.jwt.GenerateAccessToken(employeeID, "employee")
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/leave/requests/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := s.jwt.GenerateSSEToken(employeeID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests/my", nil)
	req.Header.Set("Authorization", "Bearer "+sseToken)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusUnauthorized, raw.Code)
}

func TestAttendanceOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", employeeID, map[string]any{"is_remote": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", dataField(t, resp, "status"))

	rec, resp = s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", employeeID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeConflict, resp.Error.Code)

	rec, resp = s.do(t, http.MethodPost, "/api/v1/attendance/clock-out", employeeID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", dataField(t, resp, "status"))

	rec, _ = s.do(t, http.MethodPost, "/api/v1/attendance/clock-out", employeeID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/attendance/my", employeeID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.([]any), 1)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/attendance/clock-out", outsiderID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestNotificationStream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	_, resp := s.do(t, http.MethodPost, "/api/v1/notifications/stream-token", teamLeadID, nil)
	token := dataField(t, resp, "token").(string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream?token="+token, nil)
	require.NoError(t, err)
	stream, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Equal(t, http.StatusOK, stream.StatusCode)

	lines := bufio.NewScanner(stream.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	rec, _ := s.do(t, http.MethodPost, "/api/v1/leave/requests", employeeID, map[string]any{
		"leave_type_id": casualID,
		"start_date":    "2030-11-03",
		"end_date":      "2030-11-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for lines.Scan() {
		if lines.Text() == "event: notification" {
			require.True(t, lines.Scan())
			assert.Contains(t, lines.Text(), `"type":"leave_applied"`)
			return
		}
	}
	t.Fatal("stream ended without a notification")
}

func TestNotificationStream_RejectsAccessToken(t *testing.T) {
	s := newTestServer(t)
	token, _, err := s.jwt.GenerateAccessToken(teamLeadID, "tl")
	require.NoError(t, err)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
