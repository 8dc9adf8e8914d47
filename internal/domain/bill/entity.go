package bill

import "time"

type Status string

const (
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRevalidation      Status = "revalidation"
	StatusRejected          Status = "rejected"
)

// IsTerminal reports whether no further admin decision is accepted.
// PartiallyApproved without the revalidation flag is a settled partial.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusPartiallyApproved
}

type Action string

const (
	ActionSubmit     Action = "submit"
	ActionApprove    Action = "approve"
	ActionRevalidate Action = "revalidate"
	ActionReject     Action = "reject"
)

// Bill is an expense claim for one month. Amounts are whole currency units.
type Bill struct {
	ID               string
	EmployeeID       string
	Month            int
	Year             int
	Items            []Item
	TotalAmount      int64
	ApprovedAmount   int64
	RemainingBalance int64
	RejectedAmount   int64
	Status           Status
	RejectionReason  *string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO / Join
	EmployeeName *string
	History      []Decision
}

// Item is immutable once the bill is submitted.
type Item struct {
	ID            string
	BillID        string
	Date          time.Time
	Location      string
	Description   string
	Amount        int64
	AttachmentRef *string
}

// Decision is one audited transition of a bill.
type Decision struct {
	ID         string
	BillID     string
	Action     Action
	Amount     int64
	Reason     *string
	FromStatus *Status
	ToStatus   Status
	DecidedBy  string
	CreatedAt  time.Time
}
