package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// domainErrors is checked in order; the first errors.Is match wins.
var domainErrors = []errorMapping{
	// Auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{user.ErrEmployeeIDRequired, http.StatusUnauthorized, "UNAUTHORIZED"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},

	// Attendance
	{attendance.ErrInvalidQrFormat, http.StatusBadRequest, "INVALID_QR_FORMAT"},
	{attendance.ErrQRDateMismatch, http.StatusBadRequest, "QR_DATE_MISMATCH"},
	{attendance.ErrInvalidShiftWindow, http.StatusBadRequest, "INVALID_SHIFT_WINDOW"},
	{attendance.ErrPunchOutBeforePunchIn, http.StatusBadRequest, "PUNCH_OUT_BEFORE_PUNCH_IN"},
	{attendance.ErrAlreadyPunchedIn, http.StatusConflict, "ALREADY_PUNCHED_IN"},
	{attendance.ErrAlreadyPunchedOut, http.StatusConflict, "ALREADY_PUNCHED_OUT"},
	{attendance.ErrNoOpenPunchIn, http.StatusNotFound, "NO_OPEN_PUNCH_IN"},
	{attendance.ErrQRCodeNotFound, http.StatusNotFound, "QR_CODE_NOT_FOUND"},
	{attendance.ErrAttendanceNotFound, http.StatusNotFound, "ATTENDANCE_NOT_FOUND"},

	// Bills
	{bill.ErrEmptyBill, http.StatusBadRequest, "EMPTY_BILL"},
	{bill.ErrInvalidItemAmount, http.StatusBadRequest, "INVALID_ITEM_AMOUNT"},
	{bill.ErrInvalidApprovalAmount, http.StatusBadRequest, "INVALID_APPROVAL_AMOUNT"},
	{bill.ErrRejectionReasonRequired, http.StatusBadRequest, "REJECTION_REASON_REQUIRED"},
	{bill.ErrInvalidAttachment, http.StatusBadRequest, "INVALID_ATTACHMENT"},
	{bill.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
	{bill.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE"},
	{bill.ErrBillNotFound, http.StatusNotFound, "BILL_NOT_FOUND"},

	// Files
	{storage.ErrInvalidPath, http.StatusBadRequest, "INVALID_FILE_PATH"},
	{storage.ErrFileNotFound, http.StatusNotFound, "FILE_NOT_FOUND"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fail(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", validationErrs.ToMap())
		return
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			fail(w, m.status, m.code, err.Error(), nil)
			return
		}
	}

	slog.Error("Unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}

// fail writes an error envelope.
func fail(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, Response{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message, Details: details},
	})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	fail(w, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}
