package bill

import "context"

// BillRepository defines data access methods for bills.
type BillRepository interface {
	// Create inserts the bill and its items and returns them with ids set.
	Create(ctx context.Context, b Bill) (Bill, error)

	// GetByID loads the bill with items; history is not loaded.
	GetByID(ctx context.Context, id string) (Bill, error)

	// UpdateDecision persists amounts and status if the stored version still equals
	// b.Version, then increments it. A stale version returns ErrConcurrentUpdate.
	UpdateDecision(ctx context.Context, b Bill) (Bill, error)

	List(ctx context.Context, filter BillFilter) ([]Bill, int64, error)

	AddDecision(ctx context.Context, d Decision) error
	ListDecisions(ctx context.Context, billID string) ([]Decision, error)
}
