package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/response"
)

type QRCodeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Payload(w http.ResponseWriter, r *http.Request)
}

type qrCodeHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewQRCodeHandler(attendanceService attendance.AttendanceService) QRCodeHandler {
	return &qrCodeHandlerImpl{attendanceService: attendanceService}
}

// Create implements QRCodeHandler.
func (h *qrCodeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req attendance.CreateQRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateQRCode decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CreatedBy = session.EmployeeID

	result, err := h.attendanceService.CreateQRCode(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "QR code created successfully", result)
}

// Get implements QRCodeHandler.
func (h *qrCodeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, attendance.ErrQRCodeNotFound)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetQRCode(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Payload writes the exact text encoded in the QR image.
func (h *qrCodeHandlerImpl) Payload(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, attendance.ErrQRCodeNotFound)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetQRCode(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.QRText))
}
