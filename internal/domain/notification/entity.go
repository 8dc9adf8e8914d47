package notification

import "time"

// NotificationType represents the type of notification
type NotificationType string

const (
	TypePunchIn               NotificationType = "attendance_punch_in"
	TypePunchOut              NotificationType = "attendance_punch_out"
	TypePunchAutoClosed       NotificationType = "attendance_auto_closed"
	TypeBillSubmitted         NotificationType = "bill_submitted"
	TypeBillApproved          NotificationType = "bill_approved"
	TypeBillPartiallyApproved NotificationType = "bill_partially_approved"
	TypeBillRevalidation      NotificationType = "bill_revalidation"
	TypeBillRejected          NotificationType = "bill_rejected"
)

// AdminsRecipient addresses every connected admin instead of one employee.
const AdminsRecipient = "admins"

// Notification is addressed to one employee (or AdminsRecipient).
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	CreatedAt   time.Time
}
