package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

type BillHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyBills(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Revalidate(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	UploadAttachment(w http.ResponseWriter, r *http.Request)
	DownloadAttachment(w http.ResponseWriter, r *http.Request)
}

type billHandlerImpl struct {
	billService   bill.BillService
	fileService   file.FileService
	maxUploadSize int64
}

func NewBillHandler(billService bill.BillService, fileService file.FileService, maxUploadSize int64) BillHandler {
	return &billHandlerImpl{
		billService:   billService,
		fileService:   fileService,
		maxUploadSize: maxUploadSize,
	}
}

// Submit implements BillHandler.
func (h *billHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req bill.SubmitBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SubmitBill decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = session.EmployeeID

	result, err := h.billService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Bill submitted successfully", result)
}

// Get implements BillHandler.
func (h *billHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	id, ok := idParam(w, r, bill.ErrBillNotFound)
	if !ok {
		return
	}

	result, err := h.billService.Get(r.Context(), session, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements BillHandler.
func (h *billHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := bill.BillFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Status:     optionalQuery(r, "status"),
		Month:      optionalIntQuery(r, "month"),
		Year:       optionalIntQuery(r, "year"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	h.list(w, r, filter)
}

// GetMyBills implements BillHandler.
func (h *billHandlerImpl) GetMyBills(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	filter := bill.BillFilter{
		EmployeeID: &session.EmployeeID,
		Status:     optionalQuery(r, "status"),
		Month:      optionalIntQuery(r, "month"),
		Year:       optionalIntQuery(r, "year"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	h.list(w, r, filter)
}

func (h *billHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter bill.BillFilter) {
	result, err := h.billService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Bills, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Approve implements BillHandler.
func (h *billHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, bill.ErrBillNotFound)
	if !ok {
		return
	}

	var req bill.ApproveBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ApproveBill decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id
	req.DecidedBy = session.EmployeeID

	result, err := h.billService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bill decision recorded", result)
}

// Revalidate implements BillHandler.
func (h *billHandlerImpl) Revalidate(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, bill.ErrBillNotFound)
	if !ok {
		return
	}

	var req bill.RevalidateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RevalidateBill decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id
	req.DecidedBy = session.EmployeeID

	result, err := h.billService.Revalidate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bill revalidated", result)
}

// Reject implements BillHandler.
func (h *billHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, bill.ErrBillNotFound)
	if !ok {
		return
	}

	var req bill.RejectBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RejectBill decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id
	req.DecidedBy = session.EmployeeID

	result, err := h.billService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bill rejected", result)
}

// UploadAttachment implements BillHandler.
func (h *billHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	f, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer f.Close()

	result, err := h.billService.UploadAttachment(r.Context(), bill.UploadAttachmentRequest{
		EmployeeID: session.EmployeeID,
		File:       f,
		FileHeader: fileHeader,
		MaxSize:    h.maxUploadSize,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attachment uploaded successfully", result)
}

// DownloadAttachment streams a stored attachment. Employees only reach their own files.
func (h *billHandlerImpl) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, "bills/"+session.EmployeeID+"/") &&
		!user.HasPermission(session.Role, user.PermissionBillViewAll) {
		response.NotFound(w, "File not found")
		return
	}

	rc, err := h.fileService.OpenFile(r.Context(), key)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream attachment", "key", key, "error", err)
	}
}
