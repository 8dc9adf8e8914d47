package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrInvalidQrFormat       = errors.New("invalid QR code format")
	ErrAlreadyPunchedIn      = errors.New("already punched in for this date")
	ErrNoOpenPunchIn         = errors.New("no punch-in found for this date")
	ErrAlreadyPunchedOut     = errors.New("already punched out for this date")
	ErrPunchOutBeforePunchIn = errors.New("punch-out time is before punch-in time")
	ErrQRDateMismatch        = errors.New("QR code is not valid for the scan date")

	// QR code errors
	ErrQRCodeNotFound     = errors.New("QR code not found")
	ErrInvalidShiftWindow = errors.New("invalid shift window")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
