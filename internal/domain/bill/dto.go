package bill

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/validator"
)

// ========================================
// SUBMIT DTOs
// ========================================

type ItemRequest struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Location      string  `json:"location" validate:"required,max=255"`
	Description   string  `json:"description" validate:"required,max=1000"`
	Amount        int64   `json:"amount" validate:"gt=0"`
	AttachmentRef *string `json:"attachment_ref,omitempty" validate:"omitempty,max=500"`
}

type SubmitBillRequest struct {
	EmployeeID string        `json:"-"`
	Month      int           `json:"month"`
	Year       int           `json:"year"`
	Items      []ItemRequest `json:"items"`
}

// Validate checks field formats. An empty item list is reported by the
// workflow as ErrEmptyBill, not as a validation error.
func (r *SubmitBillRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

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

	for i, item := range r.Items {
		errs = append(errs, validator.Struct(item, fmt.Sprintf("items[%d]", i))...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// DECISION DTOs
// ========================================

type ApproveBillRequest struct {
	ID                 string `json:"-"`
	DecidedBy          string `json:"-"`
	DecidedAmount      int64  `json:"decided_amount"`
	SendToRevalidation bool   `json:"send_to_revalidation"`
}

type RevalidateBillRequest struct {
	ID               string `json:"-"`
	DecidedBy        string `json:"-"`
	AdditionalAmount int64  `json:"additional_amount"`
}

type RejectBillRequest struct {
	ID        string `json:"-"`
	DecidedBy string `json:"-"`
	Reason    string `json:"reason"`
}

func (r *RejectBillRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// ATTACHMENT DTOs
// ========================================

var allowedAttachmentExts = []string{".jpg", ".jpeg", ".png", ".pdf"}

type UploadAttachmentRequest struct {
	EmployeeID string
	File       multipart.File
	FileHeader *multipart.FileHeader
	MaxSize    int64
}

func (r *UploadAttachmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attachment file is required",
		})
		return errs
	}

	ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename))
	if !validator.IsInSlice(ext, allowedAttachmentExts) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only jpg, jpeg, png, pdf allowed",
		})
	} else if r.MaxSize > 0 && r.FileHeader.Size > r.MaxSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("attachment size must not exceed %d bytes", r.MaxSize),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttachmentResponse struct {
	AttachmentRef string `json:"attachment_ref"`
	URL           string `json:"url"`
}

// ========================================
// RESPONSE / QUERY DTOs
// ========================================

type ItemResponse struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	Amount        int64   `json:"amount"`
	AttachmentRef *string `json:"attachment_ref,omitempty"`
}

type DecisionResponse struct {
	Action     Action  `json:"action"`
	Amount     int64   `json:"amount"`
	Reason     *string `json:"reason,omitempty"`
	FromStatus *Status `json:"from_status,omitempty"`
	ToStatus   Status  `json:"to_status"`
	DecidedBy  string  `json:"decided_by"`
	CreatedAt  string  `json:"created_at"`
}

type BillResponse struct {
	ID               string             `json:"id"`
	EmployeeID       string             `json:"employee_id"`
	EmployeeName     *string            `json:"employee_name,omitempty"`
	Month            int                `json:"month"`
	Year             int                `json:"year"`
	Status           Status             `json:"status"`
	TotalAmount      int64              `json:"total_amount"`
	ApprovedAmount   int64              `json:"approved_amount"`
	RemainingBalance int64              `json:"remaining_balance"`
	RejectedAmount   int64              `json:"rejected_amount"`
	RejectionReason  *string            `json:"rejection_reason,omitempty"`
	Items            []ItemResponse     `json:"items"`
	History          []DecisionResponse `json:"history,omitempty"`
	CreatedAt        string             `json:"created_at"`
	UpdatedAt        string             `json:"updated_at"`
}

type BillFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *BillFilter) Validate() error {
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
		validStatuses := []string{
			string(StatusPending), string(StatusApproved), string(StatusPartiallyApproved),
			string(StatusRevalidation), string(StatusRejected),
		}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(validStatuses, ", "),
			})
		}
	}

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListBillResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Bills      []BillResponse `json:"bills"`
}
