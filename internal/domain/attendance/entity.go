package attendance

import (
	"fmt"
	"time"
)

type ShiftType string

const (
	ShiftTypeDay   ShiftType = "day"
	ShiftTypeNight ShiftType = "night"
)

type Status string

const (
	StatusFullDay Status = "full_day"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
)

// TimeOfDay is a wall-clock time without a date, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// On combines the calendar date of date with t in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// ShiftWindow is issued per QR code by a team lead.
type ShiftWindow struct {
	Start TimeOfDay
	End   TimeOfDay
	Type  ShiftType
}

// CrossesMidnight reports whether the shift ends on the following calendar day.
func (w ShiftWindow) CrossesMidnight() bool {
	return w.End.minutes() < w.Start.minutes()
}

func (w ShiftWindow) Validate() error {
	if w.Type != ShiftTypeDay && w.Type != ShiftTypeNight {
		return fmt.Errorf("%w: unknown shift type %q", ErrInvalidShiftWindow, w.Type)
	}
	if w.Start == w.End {
		return fmt.Errorf("%w: shift start and end are equal", ErrInvalidShiftWindow)
	}
	if w.CrossesMidnight() && w.Type != ShiftTypeNight {
		return fmt.Errorf("%w: only night shifts may cross midnight", ErrInvalidShiftWindow)
	}
	return nil
}

// StartOn returns the scheduled start for the shift dated shiftDate.
func (w ShiftWindow) StartOn(shiftDate time.Time, loc *time.Location) time.Time {
	return w.Start.On(shiftDate, loc)
}

// EndOn returns the scheduled end for the shift dated shiftDate.
func (w ShiftWindow) EndOn(shiftDate time.Time, loc *time.Location) time.Time {
	end := w.End.On(shiftDate, loc)
	if w.CrossesMidnight() {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// QRCode is the stored form of a scannable shift window for one location and day.
type QRCode struct {
	ID             string
	Shift          ShiftWindow
	Location       string
	ConveyanceBase int64
	Date           time.Time
	CreatedBy      string
	CreatedAt      time.Time
}

// IssuedFor reports whether a scan at scannedAt may use this code. Night shift
// codes stay valid on the following calendar day until the shift ends.
func (q QRCode) IssuedFor(scannedAt time.Time, loc *time.Location) bool {
	scanDate := DateOf(scannedAt, loc)
	qrDate := DateOf(q.Date, time.UTC)
	if scanDate.Equal(qrDate) {
		return true
	}
	return q.Shift.Type == ShiftTypeNight &&
		scanDate.Equal(qrDate.AddDate(0, 0, 1)) &&
		scannedAt.Before(q.Shift.EndOn(qrDate, loc))
}

// PunchEvent is the immutable input of one scan.
type PunchEvent struct {
	EmployeeID     string
	Date           time.Time
	ScannedAt      time.Time
	Shift          ShiftWindow
	Location       string
	ConveyanceBase int64
}

// Record is the persisted attendance of one employee on one shift date.
type Record struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	QRCodeID         string
	Location         string
	PunchIn          time.Time
	PunchOut         *time.Time
	Status           Status
	LateMinutes      int
	ConveyanceBase   int64
	ConveyanceAmount int64
	WorkHours        *float64
	AutoClosed       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
}

// MonthlySummary aggregates one employee's records for a month.
type MonthlySummary struct {
	EmployeeID      string
	EmployeeName    *string
	FullDays        int
	HalfDays        int
	AbsentDays      int
	TotalConveyance int64
	TotalWorkHours  float64
}

// DateOf truncates t to its calendar date in loc, returned as UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
