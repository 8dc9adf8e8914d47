package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeQRRepo struct {
	codes map[string]attendance.QRCode
	seq   int
}

func newFakeQRRepo() *fakeQRRepo {
	return &fakeQRRepo{codes: make(map[string]attendance.QRCode)}
}

func (f *fakeQRRepo) Create(ctx context.Context, code attendance.QRCode) (attendance.QRCode, error) {
	f.seq++
	code.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.seq)
	code.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.codes[code.ID] = code
	return code, nil
}

func (f *fakeQRRepo) GetByID(ctx context.Context, id string) (attendance.QRCode, error) {
	code, ok := f.codes[id]
	if !ok {
		return attendance.QRCode{}, attendance.ErrQRCodeNotFound
	}
	return code, nil
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record
	seq     int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]attendance.Record)}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(rec.EmployeeID, rec.Date)
	if _, ok := f.records[key]; ok {
		return attendance.Record{}, attendance.ErrAlreadyPunchedIn
	}
	f.seq++
	rec.ID = fmt.Sprintf("att-%d", f.seq)
	f.records[key] = rec
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeAttendanceRepo) ClosePunch(ctx context.Context, rec attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(rec.EmployeeID, rec.Date)
	stored, ok := f.records[key]
	if !ok || stored.PunchOut != nil {
		return attendance.ErrAlreadyPunchedOut
	}
	stored.PunchOut = rec.PunchOut
	stored.WorkHours = rec.WorkHours
	stored.AutoClosed = rec.AutoClosed
	f.records[key] = stored
	return nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Record
	for _, rec := range f.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Record
	for _, rec := range f.records {
		if rec.PunchOut == nil && rec.Date.Before(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) MonthlySummary(ctx context.Context, month, year int, employeeID *string) ([]attendance.MonthlySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byEmployee := map[string]*attendance.MonthlySummary{}
	for _, rec := range f.records {
		if int(rec.Date.Month()) != month || rec.Date.Year() != year {
			continue
		}
		s, ok := byEmployee[rec.EmployeeID]
		if !ok {
			s = &attendance.MonthlySummary{EmployeeID: rec.EmployeeID}
			byEmployee[rec.EmployeeID] = s
		}
		switch rec.Status {
		case attendance.StatusFullDay:
			s.FullDays++
		case attendance.StatusHalfDay:
			s.HalfDays++
		case attendance.StatusAbsent:
			s.AbsentDays++
		}
		s.TotalConveyance += rec.ConveyanceAmount
	}
	var out []attendance.MonthlySummary
	for _, s := range byEmployee {
		out = append(out, *s)
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeNotifier) types() []notification.NotificationType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification.NotificationType, len(f.sent))
	for i, n := range f.sent {
		out[i] = n.Type
	}
	return out
}
