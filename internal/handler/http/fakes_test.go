package http

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/storage"
)

const (
	testBillID   = "0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e01"
	testQRCodeID = "0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e02"
)

type fakeAuthService struct {
	loggedOut []string
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Password != "password123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", RefreshTokenExpiresIn: time.Now().Add(time.Hour).Unix()}, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	if refreshToken != "refresh" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	return auth.TokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2", RefreshTokenExpiresIn: time.Now().Add(time.Hour).Unix()}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, refreshToken)
	return nil
}

type fakeAttendanceService struct {
	punchedIn  map[string]bool
	lastFilter attendance.AttendanceFilter
	lastSum    attendance.MonthlySummaryRequest
}

func (f *fakeAttendanceService) CreateQRCode(ctx context.Context, req attendance.CreateQRCodeRequest) (attendance.QRCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.QRCodeResponse{}, err
	}
	return attendance.QRCodeResponse{ID: testQRCodeID, CreatedBy: req.CreatedBy}, nil
}

func (f *fakeAttendanceService) GetQRCode(ctx context.Context, id string) (attendance.QRCodeResponse, error) {
	if id != testQRCodeID {
		return attendance.QRCodeResponse{}, attendance.ErrQRCodeNotFound
	}
	return attendance.QRCodeResponse{ID: id, QRText: `{"qr_code_id":"` + testQRCodeID + `"}`}, nil
}

func (f *fakeAttendanceService) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceResponse, error) {
	if req.QRPayload == "not json" {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidQrFormat
	}
	if f.punchedIn[req.EmployeeID] {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedIn
	}
	f.punchedIn[req.EmployeeID] = true
	return attendance.AttendanceResponse{EmployeeID: req.EmployeeID, Status: attendance.StatusFullDay}, nil
}

func (f *fakeAttendanceService) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.AttendanceResponse, error) {
	if !f.punchedIn[req.EmployeeID] {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenPunchIn
	}
	return attendance.AttendanceResponse{EmployeeID: req.EmployeeID}, nil
}

func (f *fakeAttendanceService) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	f.lastFilter = filter
	return attendance.ListAttendanceResponse{Page: 1, Limit: 20, Attendances: []attendance.AttendanceResponse{}}, nil
}

func (f *fakeAttendanceService) MonthlySummary(ctx context.Context, req attendance.MonthlySummaryRequest) ([]attendance.MonthlySummaryResponse, error) {
	f.lastSum = req
	return []attendance.MonthlySummaryResponse{}, nil
}

func (f *fakeAttendanceService) CloseStalePunches(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type fakeBillService struct {
	lastApprove bill.ApproveBillRequest
	uploads     []string
}

func (f *fakeBillService) Submit(ctx context.Context, req bill.SubmitBillRequest) (bill.BillResponse, error) {
	if len(req.Items) == 0 {
		return bill.BillResponse{}, bill.ErrEmptyBill
	}
	return bill.BillResponse{ID: testBillID, EmployeeID: req.EmployeeID, Status: bill.StatusPending}, nil
}

func (f *fakeBillService) Approve(ctx context.Context, req bill.ApproveBillRequest) (bill.BillResponse, error) {
	f.lastApprove = req
	if req.DecidedAmount > 1000 {
		return bill.BillResponse{}, bill.ErrInvalidApprovalAmount
	}
	return bill.BillResponse{ID: req.ID, Status: bill.StatusApproved}, nil
}

func (f *fakeBillService) Revalidate(ctx context.Context, req bill.RevalidateBillRequest) (bill.BillResponse, error) {
	return bill.BillResponse{}, bill.ErrInvalidStateTransition
}

func (f *fakeBillService) Reject(ctx context.Context, req bill.RejectBillRequest) (bill.BillResponse, error) {
	return bill.BillResponse{}, bill.ErrConcurrentUpdate
}

func (f *fakeBillService) Get(ctx context.Context, session user.Session, id string) (bill.BillResponse, error) {
	if id != testBillID || (session.EmployeeID != "EMP-1" && !session.IsAdmin()) {
		return bill.BillResponse{}, bill.ErrBillNotFound
	}
	return bill.BillResponse{ID: id, EmployeeID: "EMP-1"}, nil
}

func (f *fakeBillService) List(ctx context.Context, filter bill.BillFilter) (bill.ListBillResponse, error) {
	if err := filter.Validate(); err != nil {
		return bill.ListBillResponse{}, err
	}
	return bill.ListBillResponse{Page: filter.Page, Limit: filter.Limit, Bills: []bill.BillResponse{}}, nil
}

func (f *fakeBillService) UploadAttachment(ctx context.Context, req bill.UploadAttachmentRequest) (bill.AttachmentResponse, error) {
	if err := req.Validate(); err != nil {
		return bill.AttachmentResponse{}, err
	}
	f.uploads = append(f.uploads, req.FileHeader.Filename)
	key := "bills/" + req.EmployeeID + "/2024-03/" + req.FileHeader.Filename
	return bill.AttachmentResponse{AttachmentRef: key}, nil
}

type fakeFileService struct {
	files map[string]string
}

func (f *fakeFileService) UploadBillAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	return "", nil
}

func (f *fakeFileService) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.files[key]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFileService) FileExists(ctx context.Context, key string) (bool, error) {
	_, ok := f.files[key]
	return ok, nil
}

func (f *fakeFileService) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return key, nil
}

type fakeNotificationService struct {
	recipients []string
	events     chan notification.SSEEvent
}

func (f *fakeNotificationService) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	return nil
}

func (f *fakeNotificationService) GetNotifications(ctx context.Context, recipientIDs []string, page, pageSize int) (*notification.NotificationListResponse, error) {
	f.recipients = recipientIDs
	return &notification.NotificationListResponse{Page: page, PageSize: pageSize}, nil
}

func (f *fakeNotificationService) MarkAllAsRead(ctx context.Context, recipientIDs []string) error {
	f.recipients = recipientIDs
	return nil
}

func (f *fakeNotificationService) Subscribe(ctx context.Context, recipientIDs []string) (<-chan notification.SSEEvent, func()) {
	f.recipients = recipientIDs
	return f.events, func() {}
}

func (f *fakeNotificationService) Stop() {}
