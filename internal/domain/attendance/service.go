package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for QR punch attendance
type AttendanceService interface {
	// CreateQRCode issues a shift window for a location and day (team lead)
	CreateQRCode(ctx context.Context, req CreateQRCodeRequest) (QRCodeResponse, error)

	// GetQRCode returns the payload for a stored QR code
	GetQRCode(ctx context.Context, id string) (QRCodeResponse, error)

	// PunchIn classifies the scan and creates the day's record
	PunchIn(ctx context.Context, req PunchInRequest) (AttendanceResponse, error)

	// PunchOut closes the day's record and computes work hours
	PunchOut(ctx context.Context, req PunchOutRequest) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	MonthlySummary(ctx context.Context, req MonthlySummaryRequest) ([]MonthlySummaryResponse, error)

	// CloseStalePunches auto-closes punch-ins left open past their shift end
	CloseStalePunches(ctx context.Context, now time.Time) (int, error)
}
