package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record; a second record for the same employee and date
	// returns ErrAlreadyPunchedIn.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByEmployeeAndDate returns nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// ClosePunch sets punch-out fields on an open record. Returns ErrAlreadyPunchedOut
	// if the record was closed concurrently.
	ClosePunch(ctx context.Context, record Record) error

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// ListOpenBefore returns records still lacking a punch-out dated before date.
	ListOpenBefore(ctx context.Context, date time.Time) ([]Record, error)

	MonthlySummary(ctx context.Context, month, year int, employeeID *string) ([]MonthlySummary, error)
}

type QRCodeRepository interface {
	Create(ctx context.Context, code QRCode) (QRCode, error)
	GetByID(ctx context.Context, id string) (QRCode, error)
}
