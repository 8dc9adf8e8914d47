package bill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/service/file"
	"github.com/google/uuid"
)

// Notifier is the part of the notification service bills need.
type Notifier interface {
	QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error
}

type BillServiceImpl struct {
	tx database.Transactor
	bill.BillRepository
	fileService file.FileService
	notifier    Notifier
	loc         *time.Location
	now         func() time.Time
}

func NewBillService(
	tx database.Transactor,
	billRepo bill.BillRepository,
	fileService file.FileService,
	notifier Notifier,
	loc *time.Location,
) bill.BillService {
	return &BillServiceImpl{
		tx:             tx,
		BillRepository: billRepo,
		fileService:    fileService,
		notifier:       notifier,
		loc:            loc,
		now:            time.Now,
	}
}

// Submit implements bill.BillService.
func (s *BillServiceImpl) Submit(ctx context.Context, req bill.SubmitBillRequest) (bill.BillResponse, error) {
	if err := req.Validate(); err != nil {
		return bill.BillResponse{}, err
	}

	items := make([]bill.Item, 0, len(req.Items))
	for i, it := range req.Items {
		date, _ := time.Parse("2006-01-02", it.Date)
		if it.AttachmentRef != nil {
			if err := s.checkAttachment(ctx, req.EmployeeID, *it.AttachmentRef); err != nil {
				return bill.BillResponse{}, fmt.Errorf("item %d: %w", i, err)
			}
		}
		items = append(items, bill.Item{
			Date:          date,
			Location:      strings.TrimSpace(it.Location),
			Description:   strings.TrimSpace(it.Description),
			Amount:        it.Amount,
			AttachmentRef: it.AttachmentRef,
		})
	}

	draft, err := bill.Submit(req.EmployeeID, req.Month, req.Year, items)
	if err != nil {
		return bill.BillResponse{}, err
	}

	var (
		created  bill.Bill
		decision bill.Decision
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.BillRepository.Create(ctx, draft)
		if err != nil {
			return err
		}
		decision = s.newDecision(created, nil, bill.ActionSubmit, created.TotalAmount, nil, req.EmployeeID)
		return s.BillRepository.AddDecision(ctx, decision)
	})
	if err != nil {
		return bill.BillResponse{}, fmt.Errorf("failed to submit bill: %w", err)
	}
	created.History = []bill.Decision{decision}

	slog.Info("Bill submitted", "bill_id", created.ID, "employee_id", created.EmployeeID, "total", created.TotalAmount, "items", len(created.Items))

	s.notify(ctx, notification.AdminsRecipient, notification.TypeBillSubmitted, "New bill submitted",
		fmt.Sprintf("%s submitted a bill of %d for %02d/%d", created.EmployeeID, created.TotalAmount, created.Month, created.Year),
		created)

	return s.toResponse(created), nil
}

// Approve implements bill.BillService.
func (s *BillServiceImpl) Approve(ctx context.Context, req bill.ApproveBillRequest) (bill.BillResponse, error) {
	return s.decide(ctx, req.ID, req.DecidedBy, bill.ActionApprove, req.DecidedAmount, nil,
		func(b bill.Bill) (bill.Bill, error) {
			return bill.Approve(b, req.DecidedAmount, req.SendToRevalidation)
		})
}

// Revalidate implements bill.BillService.
func (s *BillServiceImpl) Revalidate(ctx context.Context, req bill.RevalidateBillRequest) (bill.BillResponse, error) {
	var reason *string
	if req.AdditionalAmount == 0 {
		r := bill.CloseWithoutPaymentReason
		reason = &r
	}
	return s.decide(ctx, req.ID, req.DecidedBy, bill.ActionRevalidate, req.AdditionalAmount, reason,
		func(b bill.Bill) (bill.Bill, error) {
			return bill.Revalidate(b, req.AdditionalAmount)
		})
}

// Reject implements bill.BillService.
func (s *BillServiceImpl) Reject(ctx context.Context, req bill.RejectBillRequest) (bill.BillResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return bill.BillResponse{}, bill.ErrRejectionReasonRequired
	}
	if err := req.Validate(); err != nil {
		return bill.BillResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	return s.decide(ctx, req.ID, req.DecidedBy, bill.ActionReject, 0, &reason,
		func(b bill.Bill) (bill.Bill, error) {
			return bill.Reject(b, reason)
		})
}

// decide loads the bill, applies one workflow step and persists it together
// with its audit entry. A concurrent decision on the same bill makes the
// version check fail and nothing is written.
func (s *BillServiceImpl) decide(
	ctx context.Context,
	id, decidedBy string,
	action bill.Action,
	amount int64,
	reason *string,
	apply func(bill.Bill) (bill.Bill, error),
) (bill.BillResponse, error) {
	var (
		from    bill.Status
		updated bill.Bill
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.BillRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from = current.Status

		next, err := apply(current)
		if err != nil {
			return err
		}
		if err := next.CheckInvariants(); err != nil {
			return fmt.Errorf("bill bookkeeping violated: %w", err)
		}

		updated, err = s.BillRepository.UpdateDecision(ctx, next)
		if err != nil {
			return err
		}

		return s.BillRepository.AddDecision(ctx, s.newDecision(updated, &from, action, amount, reason, decidedBy))
	})
	if err != nil {
		return bill.BillResponse{}, err
	}

	slog.Info("Bill decision recorded",
		"bill_id", updated.ID, "action", action, "amount", amount,
		"from", from, "to", updated.Status, "decided_by", decidedBy)

	history, err := s.BillRepository.ListDecisions(ctx, updated.ID)
	if err != nil {
		slog.Warn("Failed to load bill history", "bill_id", updated.ID, "error", err)
	}
	updated.History = history

	s.notifyDecision(ctx, updated, action, amount)

	return s.toResponse(updated), nil
}

// Get implements bill.BillService. Bills of other employees are reported as
// missing unless the caller may view all bills.
func (s *BillServiceImpl) Get(ctx context.Context, session user.Session, id string) (bill.BillResponse, error) {
	b, err := s.BillRepository.GetByID(ctx, id)
	if err != nil {
		return bill.BillResponse{}, err
	}
	if b.EmployeeID != session.EmployeeID && !user.HasPermission(session.Role, user.PermissionBillViewAll) {
		return bill.BillResponse{}, bill.ErrBillNotFound
	}

	history, err := s.BillRepository.ListDecisions(ctx, b.ID)
	if err != nil {
		return bill.BillResponse{}, fmt.Errorf("failed to load bill history: %w", err)
	}
	b.History = history

	return s.toResponse(b), nil
}

// List implements bill.BillService.
func (s *BillServiceImpl) List(ctx context.Context, filter bill.BillFilter) (bill.ListBillResponse, error) {
	if err := filter.Validate(); err != nil {
		return bill.ListBillResponse{}, err
	}

	bills, total, err := s.BillRepository.List(ctx, filter)
	if err != nil {
		return bill.ListBillResponse{}, fmt.Errorf("failed to list bills: %w", err)
	}

	responses := make([]bill.BillResponse, 0, len(bills))
	for _, b := range bills {
		responses = append(responses, s.toResponse(b))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return bill.ListBillResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Bills:      responses,
	}, nil
}

// UploadAttachment implements bill.BillService.
func (s *BillServiceImpl) UploadAttachment(ctx context.Context, req bill.UploadAttachmentRequest) (bill.AttachmentResponse, error) {
	if err := req.Validate(); err != nil {
		return bill.AttachmentResponse{}, err
	}

	key, err := s.fileService.UploadBillAttachment(ctx, req.EmployeeID, req.File, req.FileHeader.Filename)
	if err != nil {
		return bill.AttachmentResponse{}, fmt.Errorf("%w: %v", bill.ErrInvalidAttachment, err)
	}

	url, err := s.fileService.GetFileURL(ctx, key, 0)
	if err != nil {
		return bill.AttachmentResponse{}, err
	}

	return bill.AttachmentResponse{AttachmentRef: key, URL: url}, nil
}

// checkAttachment accepts only files this employee uploaded.
func (s *BillServiceImpl) checkAttachment(ctx context.Context, employeeID, ref string) error {
	if !strings.HasPrefix(ref, "bills/"+employeeID+"/") {
		return fmt.Errorf("%w: %s", bill.ErrInvalidAttachment, ref)
	}
	ok, err := s.fileService.FileExists(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", bill.ErrInvalidAttachment, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s not found", bill.ErrInvalidAttachment, ref)
	}
	return nil
}

func (s *BillServiceImpl) newDecision(b bill.Bill, from *bill.Status, action bill.Action, amount int64, reason *string, decidedBy string) bill.Decision {
	return bill.Decision{
		ID:         uuid.Must(uuid.NewV7()).String(),
		BillID:     b.ID,
		Action:     action,
		Amount:     amount,
		Reason:     reason,
		FromStatus: from,
		ToStatus:   b.Status,
		DecidedBy:  decidedBy,
		CreatedAt:  s.now(),
	}
}

func (s *BillServiceImpl) notifyDecision(ctx context.Context, b bill.Bill, action bill.Action, amount int64) {
	var (
		typ     notification.NotificationType
		title   string
		message string
	)
	switch b.Status {
	case bill.StatusApproved:
		typ, title = notification.TypeBillApproved, "Bill approved"
		message = fmt.Sprintf("Your bill for %02d/%d was approved: %d", b.Month, b.Year, b.ApprovedAmount)
	case bill.StatusPartiallyApproved:
		typ, title = notification.TypeBillPartiallyApproved, "Bill partially approved"
		message = fmt.Sprintf("%d of %d was approved", b.ApprovedAmount, b.TotalAmount)
	case bill.StatusRevalidation:
		typ, title = notification.TypeBillRevalidation, "Bill sent to revalidation"
		message = fmt.Sprintf("%d approved so far, %d awaiting revalidation", b.ApprovedAmount, b.RemainingBalance)
	case bill.StatusRejected:
		typ, title = notification.TypeBillRejected, "Bill rejected"
		message = "Your bill was rejected"
		if b.RejectionReason != nil {
			message += ": " + *b.RejectionReason
		}
	default:
		return
	}
	s.notify(ctx, b.EmployeeID, typ, title, message, b)
}

func (s *BillServiceImpl) notify(ctx context.Context, recipient string, typ notification.NotificationType, title, message string, b bill.Bill) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"bill_id":           b.ID,
			"employee_id":       b.EmployeeID,
			"status":            string(b.Status),
			"approved_amount":   b.ApprovedAmount,
			"remaining_balance": b.RemainingBalance,
		},
	})
	if err != nil {
		slog.Warn("Failed to queue bill notification", "bill_id", b.ID, "type", typ, "error", err)
	}
}

func (s *BillServiceImpl) toResponse(b bill.Bill) bill.BillResponse {
	items := make([]bill.ItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, bill.ItemResponse{
			ID:            it.ID,
			Date:          it.Date.Format("2006-01-02"),
			Location:      it.Location,
			Description:   it.Description,
			Amount:        it.Amount,
			AttachmentRef: it.AttachmentRef,
		})
	}

	var history []bill.DecisionResponse
	for _, d := range b.History {
		history = append(history, bill.DecisionResponse{
			Action:     d.Action,
			Amount:     d.Amount,
			Reason:     d.Reason,
			FromStatus: d.FromStatus,
			ToStatus:   d.ToStatus,
			DecidedBy:  d.DecidedBy,
			CreatedAt:  d.CreatedAt.In(s.loc).Format(time.RFC3339),
		})
	}

	return bill.BillResponse{
		ID:               b.ID,
		EmployeeID:       b.EmployeeID,
		EmployeeName:     b.EmployeeName,
		Month:            b.Month,
		Year:             b.Year,
		Status:           b.Status,
		TotalAmount:      b.TotalAmount,
		ApprovedAmount:   b.ApprovedAmount,
		RemainingBalance: b.RemainingBalance,
		RejectedAmount:   b.RejectedAmount,
		RejectionReason:  b.RejectionReason,
		Items:            items,
		History:          history,
		CreatedAt:        b.CreatedAt.In(s.loc).Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.In(s.loc).Format(time.RFC3339),
	}
}
