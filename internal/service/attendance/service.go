package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
)

// Notifier is the part of the notification service attendance needs.
type Notifier interface {
	QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	attendance.QRCodeRepository
	notifier   Notifier
	loc        *time.Location
	staleAfter time.Duration
	now        func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	qrCodeRepo attendance.QRCodeRepository,
	notifier Notifier,
	loc *time.Location,
	staleAfter time.Duration,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		QRCodeRepository:     qrCodeRepo,
		notifier:             notifier,
		loc:                  loc,
		staleAfter:           staleAfter,
		now:                  time.Now,
	}
}

// CreateQRCode implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CreateQRCode(ctx context.Context, req attendance.CreateQRCodeRequest) (attendance.QRCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.QRCodeResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	start, err := attendance.ParseTimeOfDay(req.ShiftStart)
	if err != nil {
		return attendance.QRCodeResponse{}, fmt.Errorf("%w: %v", attendance.ErrInvalidShiftWindow, err)
	}
	end, err := attendance.ParseTimeOfDay(req.ShiftEnd)
	if err != nil {
		return attendance.QRCodeResponse{}, fmt.Errorf("%w: %v", attendance.ErrInvalidShiftWindow, err)
	}

	shift := attendance.ShiftWindow{Start: start, End: end, Type: attendance.ShiftType(req.ShiftType)}
	if err := shift.Validate(); err != nil {
		return attendance.QRCodeResponse{}, err
	}

	created, err := a.QRCodeRepository.Create(ctx, attendance.QRCode{
		Shift:          shift,
		Location:       req.Location,
		ConveyanceBase: req.ConveyanceBase,
		Date:           date,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		return attendance.QRCodeResponse{}, fmt.Errorf("failed to create qr code: %w", err)
	}

	slog.Info("QR code issued", "qr_code_id", created.ID, "date", req.Date, "location", created.Location, "created_by", created.CreatedBy)

	return a.toQRCodeResponse(created)
}

// GetQRCode implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetQRCode(ctx context.Context, id string) (attendance.QRCodeResponse, error) {
	code, err := a.QRCodeRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.QRCodeResponse{}, err
	}
	return a.toQRCodeResponse(code)
}

// PunchIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	scannedAt := a.scanTime(req.ScannedAt)

	scanned, err := attendance.ParseQRPayload([]byte(req.QRPayload))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	code, err := a.QRCodeRepository.GetByID(ctx, scanned.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !sameIssue(scanned, code) {
		return attendance.AttendanceResponse{}, fmt.Errorf("%w: payload does not match the issued code", attendance.ErrInvalidQrFormat)
	}
	if !code.IssuedFor(scannedAt, a.loc) {
		return attendance.AttendanceResponse{}, attendance.ErrQRDateMismatch
	}

	result := attendance.Classify(attendance.PunchEvent{
		EmployeeID:     req.EmployeeID,
		Date:           code.Date,
		ScannedAt:      scannedAt,
		Shift:          code.Shift,
		Location:       code.Location,
		ConveyanceBase: code.ConveyanceBase,
	}, a.loc)

	var created attendance.Record
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, code.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendance.ErrAlreadyPunchedIn
		}

		created, err = a.AttendanceRepository.Create(ctx, attendance.Record{
			EmployeeID:       req.EmployeeID,
			Date:             code.Date,
			QRCodeID:         code.ID,
			Location:         code.Location,
			PunchIn:          scannedAt,
			Status:           result.Status,
			LateMinutes:      result.LateMinutes(),
			ConveyanceBase:   code.ConveyanceBase,
			ConveyanceAmount: result.ConveyanceAmount,
		})
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Punch-in recorded",
		"employee_id", created.EmployeeID, "date", created.Date.Format("2006-01-02"),
		"status", created.Status, "late_minutes", created.LateMinutes, "conveyance", created.ConveyanceAmount)

	a.notify(ctx, created.EmployeeID, notification.TypePunchIn, "Punch-in recorded",
		fmt.Sprintf("Punched in at %s: %s, conveyance %d", created.Location, created.Status, created.ConveyanceAmount),
		created)

	return a.toAttendanceResponse(created), nil
}

// PunchOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	scannedAt := a.scanTime(req.ScannedAt)
	date, _ := time.Parse("2006-01-02", req.Date)

	var closed attendance.Record
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if rec == nil {
			return attendance.ErrNoOpenPunchIn
		}
		if rec.PunchOut != nil {
			return attendance.ErrAlreadyPunchedOut
		}
		if scannedAt.Before(rec.PunchIn) {
			return attendance.ErrPunchOutBeforePunchIn
		}

		closed = closePunch(*rec, scannedAt, false)
		return a.AttendanceRepository.ClosePunch(ctx, closed)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.notify(ctx, closed.EmployeeID, notification.TypePunchOut, "Punch-out recorded",
		fmt.Sprintf("Punched out after %.2f hours", *closed.WorkHours), closed)

	return a.toAttendanceResponse(closed), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, a.toAttendanceResponse(rec))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}, nil
}

// MonthlySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MonthlySummary(ctx context.Context, req attendance.MonthlySummaryRequest) ([]attendance.MonthlySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	summaries, err := a.AttendanceRepository.MonthlySummary(ctx, req.Month, req.Year, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly summary: %w", err)
	}

	responses := make([]attendance.MonthlySummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, attendance.MonthlySummaryResponse{
			EmployeeID:      s.EmployeeID,
			EmployeeName:    s.EmployeeName,
			FullDays:        s.FullDays,
			HalfDays:        s.HalfDays,
			AbsentDays:      s.AbsentDays,
			TotalConveyance: s.TotalConveyance,
			TotalWorkHours:  s.TotalWorkHours,
		})
	}
	return responses, nil
}

// CloseStalePunches implements attendance.AttendanceService. A punch-in still
// open staleAfter past its scheduled shift end is closed at that shift end.
func (a *AttendanceServiceImpl) CloseStalePunches(ctx context.Context, now time.Time) (int, error) {
	open, err := a.AttendanceRepository.ListOpenBefore(ctx, attendance.DateOf(now, a.loc).AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("failed to list open punches: %w", err)
	}

	codes := make(map[string]attendance.QRCode)
	closedCount := 0
	for _, rec := range open {
		code, ok := codes[rec.QRCodeID]
		if !ok {
			code, err = a.QRCodeRepository.GetByID(ctx, rec.QRCodeID)
			if err != nil {
				slog.Error("Failed to load QR code for stale punch", "attendance_id", rec.ID, "qr_code_id", rec.QRCodeID, "error", err)
				continue
			}
			codes[rec.QRCodeID] = code
		}

		shiftEnd := code.Shift.EndOn(rec.Date, a.loc)
		if now.Before(shiftEnd.Add(a.staleAfter)) {
			continue
		}

		out := shiftEnd
		if out.Before(rec.PunchIn) {
			out = rec.PunchIn
		}
		closed := closePunch(rec, out, true)
		if err := a.AttendanceRepository.ClosePunch(ctx, closed); err != nil {
			if errors.Is(err, attendance.ErrAlreadyPunchedOut) {
				continue
			}
			slog.Error("Failed to auto-close attendance", "attendance_id", rec.ID, "employee_id", rec.EmployeeID, "error", err)
			continue
		}
		closedCount++

		a.notify(ctx, closed.EmployeeID, notification.TypePunchAutoClosed, "Attendance auto-closed",
			fmt.Sprintf("No punch-out was recorded for %s; closed at the scheduled shift end", closed.Date.Format("2006-01-02")),
			closed)
	}

	return closedCount, nil
}

func closePunch(rec attendance.Record, out time.Time, auto bool) attendance.Record {
	hours := attendance.WorkHours(rec.PunchIn, out)
	rec.PunchOut = &out
	rec.WorkHours = &hours
	rec.AutoClosed = auto
	return rec
}

// sameIssue reports whether a scanned payload carries the stored code's terms.
func sameIssue(scanned, stored attendance.QRCode) bool {
	return scanned.Shift == stored.Shift &&
		scanned.Location == stored.Location &&
		scanned.ConveyanceBase == stored.ConveyanceBase &&
		scanned.Date.Equal(stored.Date)
}

func (a *AttendanceServiceImpl) scanTime(s *string) time.Time {
	if s == nil {
		return a.now()
	}
	t, _ := time.Parse(time.RFC3339Nano, *s)
	return t
}

func (a *AttendanceServiceImpl) notify(ctx context.Context, recipient string, typ notification.NotificationType, title, message string, rec attendance.Record) {
	if a.notifier == nil {
		return
	}
	err := a.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"attendance_id": rec.ID,
			"date":          rec.Date.Format("2006-01-02"),
			"status":        string(rec.Status),
		},
	})
	if err != nil {
		slog.Warn("Failed to queue attendance notification", "employee_id", recipient, "type", typ, "error", err)
	}
}

func (a *AttendanceServiceImpl) toQRCodeResponse(code attendance.QRCode) (attendance.QRCodeResponse, error) {
	payload := attendance.NewQRPayload(code)
	text, err := payload.Encode()
	if err != nil {
		return attendance.QRCodeResponse{}, err
	}
	return attendance.QRCodeResponse{
		ID:        code.ID,
		Payload:   payload,
		QRText:    text,
		CreatedBy: code.CreatedBy,
		CreatedAt: code.CreatedAt.In(a.loc).Format(time.RFC3339),
	}, nil
}

func (a *AttendanceServiceImpl) toAttendanceResponse(rec attendance.Record) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		EmployeeName:     rec.EmployeeName,
		Date:             rec.Date.Format("2006-01-02"),
		QRCodeID:         rec.QRCodeID,
		Location:         rec.Location,
		PunchInTime:      rec.PunchIn.In(a.loc).Format(time.RFC3339),
		Status:           rec.Status,
		LateMinutes:      rec.LateMinutes,
		ConveyanceBase:   rec.ConveyanceBase,
		ConveyanceAmount: rec.ConveyanceAmount,
		WorkHours:        rec.WorkHours,
		AutoClosed:       rec.AutoClosed,
	}
	if rec.PunchOut != nil {
		out := rec.PunchOut.In(a.loc).Format(time.RFC3339)
		resp.PunchOutTime = &out
	}
	return resp
}
