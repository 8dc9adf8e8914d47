package bill

import (
	"context"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
)

// BillService defines business logic for expense bills
type BillService interface {
	Submit(ctx context.Context, req SubmitBillRequest) (BillResponse, error)

	// Admin decisions
	Approve(ctx context.Context, req ApproveBillRequest) (BillResponse, error)
	Revalidate(ctx context.Context, req RevalidateBillRequest) (BillResponse, error)
	Reject(ctx context.Context, req RejectBillRequest) (BillResponse, error)

	// Get returns a bill with its history; employees only see their own bills
	Get(ctx context.Context, session user.Session, id string) (BillResponse, error)
	List(ctx context.Context, filter BillFilter) (ListBillResponse, error)

	UploadAttachment(ctx context.Context, req UploadAttachmentRequest) (AttachmentResponse, error)
}
