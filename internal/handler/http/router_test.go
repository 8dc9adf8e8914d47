package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	auth       *fakeAuthService
	attendance *fakeAttendanceService
	bills      *fakeBillService
	files      *fakeFileService
	notifs     *fakeNotificationService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtService, err := jwt.NewJWTService(handlerTestSecret, "1h", "24h")
	require.NoError(t, err)

	s := &testServer{
		jwt:        jwtService,
		auth:       &fakeAuthService{},
		attendance: &fakeAttendanceService{punchedIn: map[string]bool{}},
		bills:      &fakeBillService{},
		files:      &fakeFileService{files: map[string]string{"bills/EMP-1/2024-03/a.pdf": "%PDF"}},
		notifs:     &fakeNotificationService{events: make(chan notification.SSEEvent, 1)},
	}
	s.handler = NewRouter(jwtService, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test"}, Handlers{
		Auth:         NewAuthHandler(jwtService, s.auth),
		QRCode:       NewQRCodeHandler(s.attendance),
		Attendance:   NewAttendanceHandler(s.attendance),
		Bill:         NewBillHandler(s.bills, s.files, 1<<20),
		Notification: NewNotificationHandler(s.notifs, jwtService),
	})
	return s
}

func (s *testServer) token(t *testing.T, employeeID string, role user.Role) string {
	t.Helper()
	tok, _, err := s.jwt.GenerateAccessToken(user.User{ID: "user-" + employeeID, EmployeeID: employeeID, Email: "x@y.co", Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@b.co", "password": "password123"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "refresh_token=refresh")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@b.co", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "refresh"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// cookie fallback
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-2"})
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"refresh-2"}, s.auth.loggedOut)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/bills/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, _, err := s.jwt.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/bills/my", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQRCodeRoutes(t *testing.T) {
	s := newTestServer(t)
	lead := s.token(t, "LEAD-1", user.RoleTeamLead)
	emp := s.token(t, "EMP-1", user.RoleEmployee)

	body := map[string]interface{}{
		"date": "2024-03-11", "shift_start": "10:00", "shift_end": "18:00",
		"shift_type": "day", "location": "HQ", "conveyance_base": 100,
	}
	rec := s.do(t, http.MethodPost, "/api/v1/qr-codes", emp, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/qr-codes", lead, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/qr-codes/"+testQRCodeID+"/payload", emp, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"qr_code_id":"`+testQRCodeID+`"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/qr-codes/0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5eff", emp, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "QR_CODE_NOT_FOUND", decodeResponse(t, rec).Error.Code)

	// ids that are not UUIDs never reach the store
	for _, path := range []string{"/api/v1/qr-codes/abc", "/api/v1/qr-codes/abc/payload"} {
		rec = s.do(t, http.MethodGet, path, emp, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "QR_CODE_NOT_FOUND", decodeResponse(t, rec).Error.Code, path)
	}
}

func TestAttendanceRoutes(t *testing.T) {
	s := newTestServer(t)
	emp := s.token(t, "EMP-1", user.RoleEmployee)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance/punch-out", emp, map[string]string{"date": "2024-03-11"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/punch-in", emp, map[string]string{"qr_payload": "not json"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_QR_FORMAT", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/punch-in", emp, map[string]string{"qr_payload": "{}"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/punch-in", emp, map[string]string{"qr_payload": "{}"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_PUNCHED_IN", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/punch-in", emp, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceQueries(t *testing.T) {
	s := newTestServer(t)
	emp := s.token(t, "EMP-1", user.RoleEmployee)
	admin := s.token(t, "ADM-1", user.RoleAdmin)

	rec := s.do(t, http.MethodGet, "/api/v1/attendance?employee_id=EMP-2", emp, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/my?start_date=2024-03-01&page=2", emp, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EMP-1", *s.attendance.lastFilter.EmployeeID)
	assert.Equal(t, "2024-03-01", *s.attendance.lastFilter.StartDate)
	assert.Equal(t, 2, s.attendance.lastFilter.Page)

	// employees only see their own summary
	rec = s.do(t, http.MethodGet, "/api/v1/attendance/summary?month=3&year=2024&employee_id=EMP-2", emp, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EMP-1", *s.attendance.lastSum.EmployeeID)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/summary?month=3&year=2024&employee_id=EMP-2", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EMP-2", *s.attendance.lastSum.EmployeeID)
}

func TestBillRoutes(t *testing.T) {
	s := newTestServer(t)
	emp := s.token(t, "EMP-1", user.RoleEmployee)
	other := s.token(t, "EMP-2", user.RoleEmployee)
	admin := s.token(t, "ADM-1", user.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/v1/bills", emp, map[string]interface{}{"month": 3, "year": 2024, "items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_BILL", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/bills", emp, map[string]interface{}{
		"month": 3, "year": 2024,
		"items": []map[string]interface{}{{"date": "2024-03-04", "location": "X", "description": "Y", "amount": 100}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/bills/"+testBillID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/bills/"+testBillID, emp, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/bills/abc", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "BILL_NOT_FOUND", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/bills", emp, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/bills?status=bogus", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/bills?status=pending&month=3", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBillDecisionRoutes(t *testing.T) {
	s := newTestServer(t)
	emp := s.token(t, "EMP-1", user.RoleEmployee)
	admin := s.token(t, "ADM-1", user.RoleAdmin)

	rec := s.do(t, http.MethodPut, "/api/v1/bills/"+testBillID+"/approve", emp, map[string]interface{}{"decided_amount": 100})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/bills/"+testBillID+"/approve", admin, map[string]interface{}{"decided_amount": 600, "send_to_revalidation": true})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testBillID, s.bills.lastApprove.ID)
	assert.Equal(t, "ADM-1", s.bills.lastApprove.DecidedBy)
	assert.True(t, s.bills.lastApprove.SendToRevalidation)

	rec = s.do(t, http.MethodPut, "/api/v1/bills/"+testBillID+"/approve", admin, map[string]interface{}{"decided_amount": 5000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_APPROVAL_AMOUNT", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/bills/"+testBillID+"/revalidate", admin, map[string]interface{}{"additional_amount": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/bills/"+testBillID+"/reject", admin, map[string]interface{}{"reason": "dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONCURRENT_UPDATE", decodeResponse(t, rec).Error.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/bills/abc/reject", admin, map[string]interface{}{"reason": "dup"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "BILL_NOT_FOUND", decodeResponse(t, rec).Error.Code)
}

func TestBillAttachments(t *testing.T) {
	s := newTestServer(t)
	emp := s.token(t, "EMP-1", user.RoleEmployee)
	other := s.token(t, "EMP-2", user.RoleEmployee)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "receipt.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+emp)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"receipt.pdf"}, s.bills.uploads)

	rec = s.do(t, http.MethodGet, "/api/v1/bills/attachments/bills/EMP-1/2024-03/a.pdf", emp, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/bills/attachments/bills/EMP-1/2024-03/a.pdf", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/bills/attachments/bills/EMP-1/2024-03/missing.pdf", emp, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "ADM-1", user.RoleAdmin)

	rec := s.do(t, http.MethodGet, "/api/v1/notifications?page=2", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ADM-1", notification.AdminsRecipient}, s.notifs.recipients)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/sse-token", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data notification.SSETokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 300, body.Data.ExpiresIn)

	s.notifs.events <- notification.SSEEvent{
		Event: string(notification.TypeBillSubmitted),
		Data:  notification.NotificationResponse{ID: "n-1", Type: notification.TypeBillSubmitted, Title: "New bill submitted"},
	}
	close(s.notifs.events)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+body.Data.Token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	stream := rec.Body.String()
	assert.True(t, strings.HasPrefix(stream, "event: connected\n"))
	assert.Contains(t, stream, "event: bill_submitted\ndata: {\"id\":\"n-1\"")

	// an access token is not an SSE token
	rec = s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+admin, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
