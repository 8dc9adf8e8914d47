package bill

import "errors"

// Bill domain errors
var (
	ErrEmptyBill               = errors.New("bill must contain at least one item")
	ErrInvalidApprovalAmount   = errors.New("invalid approval amount")
	ErrInvalidStateTransition  = errors.New("invalid state transition for bill")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrInvalidItemAmount       = errors.New("bill item amount must be greater than zero")

	ErrBillNotFound      = errors.New("bill not found")
	ErrConcurrentUpdate  = errors.New("bill was modified by another request")
	ErrInvalidAttachment = errors.New("invalid attachment")
)
