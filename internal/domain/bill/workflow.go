package bill

import (
	"fmt"
	"math"
	"strings"
)

// CloseWithoutPaymentReason is recorded when a revalidation closes with no further amount.
const CloseWithoutPaymentReason = "closed without further payment"

// Submit builds a new pending bill from its items.
func Submit(employeeID string, month, year int, items []Item) (Bill, error) {
	if len(items) == 0 {
		return Bill{}, ErrEmptyBill
	}

	var total int64
	for i, item := range items {
		if item.Amount <= 0 {
			return Bill{}, fmt.Errorf("%w: item %d", ErrInvalidItemAmount, i)
		}
		if item.Amount > math.MaxInt64-total {
			return Bill{}, fmt.Errorf("%w: item %d overflows the bill total", ErrInvalidItemAmount, i)
		}
		total += item.Amount
	}

	return Bill{
		EmployeeID:       employeeID,
		Month:            month,
		Year:             year,
		Items:            items,
		TotalAmount:      total,
		ApprovedAmount:   0,
		RemainingBalance: total,
		Status:           StatusPending,
	}, nil
}

// Outstanding is the part of the total neither approved nor rejected yet.
func (b Bill) Outstanding() int64 {
	return b.TotalAmount - b.ApprovedAmount - b.RejectedAmount
}

// Approve applies an admin decision of decidedAmount to a pending or
// revalidation bill. b is never modified; the next state is returned.
func Approve(b Bill, decidedAmount int64, sendToRevalidation bool) (Bill, error) {
	if b.Status != StatusPending && b.Status != StatusRevalidation {
		return b, fmt.Errorf("%w: cannot approve a %s bill", ErrInvalidStateTransition, b.Status)
	}

	outstanding := b.Outstanding()
	if decidedAmount < 0 || decidedAmount > outstanding {
		return b, fmt.Errorf("%w: amount must be between 0 and %d", ErrInvalidApprovalAmount, outstanding)
	}

	next := b
	next.ApprovedAmount += decidedAmount
	next.RemainingBalance = next.Outstanding()

	switch {
	case decidedAmount == outstanding:
		next.Status = StatusApproved
	case sendToRevalidation:
		next.Status = StatusRevalidation
	default:
		next.Status = StatusPartiallyApproved
	}
	return next, nil
}

// Revalidate approves additionalAmount of the remaining balance of a bill in
// revalidation. Zero closes the bill, rejecting what is left.
func Revalidate(b Bill, additionalAmount int64) (Bill, error) {
	if b.Status != StatusRevalidation {
		return b, fmt.Errorf("%w: cannot revalidate a %s bill", ErrInvalidStateTransition, b.Status)
	}
	if additionalAmount < 0 || additionalAmount > b.RemainingBalance {
		return b, fmt.Errorf("%w: amount must be between 0 and %d", ErrInvalidApprovalAmount, b.RemainingBalance)
	}

	if additionalAmount == 0 {
		return Reject(b, CloseWithoutPaymentReason)
	}

	next := b
	next.ApprovedAmount += additionalAmount
	next.RemainingBalance = next.Outstanding()
	if next.RemainingBalance == 0 {
		next.Status = StatusApproved
	}
	return next, nil
}

// Reject closes a pending or revalidation bill. Whatever is outstanding is
// not paid; previously approved amounts stay approved.
func Reject(b Bill, reason string) (Bill, error) {
	if b.Status != StatusPending && b.Status != StatusRevalidation {
		return b, fmt.Errorf("%w: cannot reject a %s bill", ErrInvalidStateTransition, b.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return b, ErrRejectionReasonRequired
	}

	next := b
	next.RejectedAmount += next.Outstanding()
	next.RemainingBalance = 0
	next.Status = StatusRejected
	next.RejectionReason = &reason
	return next, nil
}

// CheckInvariants verifies the amount bookkeeping of b.
func (b Bill) CheckInvariants() error {
	if b.ApprovedAmount < 0 || b.RemainingBalance < 0 || b.RejectedAmount < 0 {
		return fmt.Errorf("bill %s: negative amount", b.ID)
	}
	if b.ApprovedAmount+b.RemainingBalance+b.RejectedAmount != b.TotalAmount {
		return fmt.Errorf("bill %s: approved %d + remaining %d + rejected %d != total %d",
			b.ID, b.ApprovedAmount, b.RemainingBalance, b.RejectedAmount, b.TotalAmount)
	}
	return nil
}
