package attendance

import (
	"strings"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/validator"
)

// ========================================
// QR CODE DTOs
// ========================================

type CreateQRCodeRequest struct {
	CreatedBy      string `json:"-"`
	Date           string `json:"date"`        // YYYY-MM-DD
	ShiftStart     string `json:"shift_start"` // HH:MM
	ShiftEnd       string `json:"shift_end"`   // HH:MM
	ShiftType      string `json:"shift_type"`  // day, night
	Location       string `json:"location"`
	ConveyanceBase int64  `json:"conveyance_base"`
}

func (r *CreateQRCodeRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsValidTimeOfDay(r.ShiftStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_start",
			Message: "shift_start must be in HH:MM format",
		})
	}

	if !validator.IsValidTimeOfDay(r.ShiftEnd) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_end",
			Message: "shift_end must be in HH:MM format",
		})
	}

	r.ShiftType = strings.ToLower(strings.TrimSpace(r.ShiftType))
	if !validator.IsInSlice(r.ShiftType, []string{string(ShiftTypeDay), string(ShiftTypeNight)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: day, night",
		})
	}

	if validator.IsEmpty(r.Location) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location is required",
		})
	}

	if r.ConveyanceBase < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "conveyance_base",
			Message: "conveyance_base must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type QRCodeResponse struct {
	ID        string    `json:"id"`
	Payload   QRPayload `json:"payload"`
	QRText    string    `json:"qr_text"`
	CreatedBy string    `json:"created_by"`
	CreatedAt string    `json:"created_at"`
}

// ========================================
// PUNCH DTOs
// ========================================

type PunchInRequest struct {
	EmployeeID string  `json:"-"`
	QRPayload  string  `json:"qr_payload"`
	ScannedAt  *string `json:"scanned_at,omitempty"` // RFC3339, defaults to server time
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.QRPayload) {
		errs = append(errs, validator.ValidationError{
			Field:   "qr_payload",
			Message: "qr_payload is required",
		})
	}

	if r.ScannedAt != nil {
		if _, valid := validator.IsValidDateTime(*r.ScannedAt); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "scanned_at",
				Message: "scanned_at must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchOutRequest struct {
	EmployeeID string  `json:"-"`
	Date       string  `json:"date"`                 // shift date, YYYY-MM-DD
	ScannedAt  *string `json:"scanned_at,omitempty"` // RFC3339, defaults to server time
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.ScannedAt != nil {
		if _, valid := validator.IsValidDateTime(*r.ScannedAt); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "scanned_at",
				Message: "scanned_at must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     *string  `json:"employee_name,omitempty"`
	Date             string   `json:"date"`
	QRCodeID         string   `json:"qr_code_id"`
	Location         string   `json:"location"`
	PunchInTime      string   `json:"punch_in_time"`
	PunchOutTime     *string  `json:"punch_out_time,omitempty"`
	Status           Status   `json:"status"`
	LateMinutes      int      `json:"late_minutes"`
	ConveyanceBase   int64    `json:"conveyance_base"`
	ConveyanceAmount int64    `json:"conveyance_amount"`
	WorkHours        *float64 `json:"work_hours,omitempty"`
	AutoClosed       bool     `json:"auto_closed"`
}

// ========================================
// QUERY DTOs
// ========================================

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusFullDay), string(StatusHalfDay), string(StatusAbsent)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: full_day, half_day, absent",
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type MonthlySummaryRequest struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthlySummaryResponse struct {
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	FullDays        int     `json:"full_days"`
	HalfDays        int     `json:"half_days"`
	AbsentDays      int     `json:"absent_days"`
	TotalConveyance int64   `json:"total_conveyance"`
	TotalWorkHours  float64 `json:"total_work_hours"`
}
