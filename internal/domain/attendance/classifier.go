package attendance

import (
	"math"
	"time"
)

const (
	// FullDayGrace is the largest lateness still paid as a full day.
	FullDayGrace = 30 * time.Minute
	// HalfDayLimit is the largest lateness still paid as a half day.
	HalfDayLimit = 3 * time.Hour
)

type Classification struct {
	Status           Status
	Lateness         time.Duration
	ConveyanceAmount int64
}

// LateMinutes returns the whole minutes of lateness, rounded down.
func (c Classification) LateMinutes() int {
	return int(c.Lateness / time.Minute)
}

// Lateness measures scannedAt against the shift start on the shift's own
// calendar date, never the scan's. Early scans count as zero.
func Lateness(shift ShiftWindow, shiftDate, scannedAt time.Time, loc *time.Location) time.Duration {
	late := scannedAt.Sub(shift.StartOn(shiftDate, loc))
	if late < 0 {
		return 0
	}
	return late
}

// Classify maps a punch event to its attendance status and conveyance payout.
// Boundaries belong to the lower-lateness bucket.
func Classify(ev PunchEvent, loc *time.Location) Classification {
	late := Lateness(ev.Shift, ev.Date, ev.ScannedAt, loc)

	switch {
	case late <= FullDayGrace:
		return Classification{Status: StatusFullDay, Lateness: late, ConveyanceAmount: ev.ConveyanceBase}
	case late <= HalfDayLimit:
		return Classification{Status: StatusHalfDay, Lateness: late, ConveyanceAmount: HalfOf(ev.ConveyanceBase)}
	default:
		return Classification{Status: StatusAbsent, Lateness: late, ConveyanceAmount: 0}
	}
}

// HalfOf returns base*0.5 rounded half-up to a whole currency unit.
func HalfOf(base int64) int64 {
	if base <= 0 {
		return 0
	}
	return (base + 1) / 2
}

// WorkHours returns the elapsed hours between punch-in and punch-out, two decimals.
func WorkHours(punchIn, punchOut time.Time) float64 {
	d := punchOut.Sub(punchIn)
	if d <= 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}
