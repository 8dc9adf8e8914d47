package attendance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QRPayload is the structured data encoded in a scannable QR image.
type QRPayload struct {
	QRCodeID       string `json:"qr_code_id"`
	ShiftStart     string `json:"shift_start"`
	ShiftEnd       string `json:"shift_end"`
	ShiftType      string `json:"shift_type"`
	Location       string `json:"location"`
	ConveyanceBase int64  `json:"conveyance_base"`
	Date           string `json:"date"`
}

// NewQRPayload renders a stored code as its scannable payload.
func NewQRPayload(q QRCode) QRPayload {
	return QRPayload{
		QRCodeID:       q.ID,
		ShiftStart:     q.Shift.Start.String(),
		ShiftEnd:       q.Shift.End.String(),
		ShiftType:      string(q.Shift.Type),
		Location:       q.Location,
		ConveyanceBase: q.ConveyanceBase,
		Date:           q.Date.Format("2006-01-02"),
	}
}

// Encode returns the JSON text placed in the QR image.
func (p QRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR payload: %w", err)
	}
	return string(b), nil
}

// ParseQRPayload decodes and validates a scanned payload. Every failure wraps
// ErrInvalidQrFormat; the user has to rescan.
func ParseQRPayload(raw []byte) (QRCode, error) {
	var p QRPayload

	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	if err := dec.Decode(&p); err != nil {
		return QRCode{}, fmt.Errorf("%w: %v", ErrInvalidQrFormat, err)
	}
	if dec.More() {
		return QRCode{}, fmt.Errorf("%w: trailing data", ErrInvalidQrFormat)
	}

	code, err := p.toQRCode()
	if err != nil {
		return QRCode{}, fmt.Errorf("%w: %v", ErrInvalidQrFormat, err)
	}
	return code, nil
}

func (p QRPayload) toQRCode() (QRCode, error) {
	if strings.TrimSpace(p.QRCodeID) == "" {
		return QRCode{}, fmt.Errorf("qr_code_id is required")
	}
	if err := uuid.Validate(p.QRCodeID); err != nil {
		return QRCode{}, fmt.Errorf("qr_code_id: %v", err)
	}
	if strings.TrimSpace(p.Location) == "" {
		return QRCode{}, fmt.Errorf("location is required")
	}
	if p.ConveyanceBase < 0 {
		return QRCode{}, fmt.Errorf("conveyance_base must not be negative")
	}

	start, err := ParseTimeOfDay(p.ShiftStart)
	if err != nil {
		return QRCode{}, fmt.Errorf("shift_start: %v", err)
	}
	end, err := ParseTimeOfDay(p.ShiftEnd)
	if err != nil {
		return QRCode{}, fmt.Errorf("shift_end: %v", err)
	}
	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return QRCode{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}

	shift := ShiftWindow{Start: start, End: end, Type: ShiftType(strings.ToLower(p.ShiftType))}
	if err := shift.Validate(); err != nil {
		return QRCode{}, err
	}

	return QRCode{
		ID:             p.QRCodeID,
		Shift:          shift,
		Location:       p.Location,
		ConveyanceBase: p.ConveyanceBase,
		Date:           date,
	}, nil
}
