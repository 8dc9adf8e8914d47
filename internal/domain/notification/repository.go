package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []*Notification) error
	GetByRecipient(ctx context.Context, recipientIDs []string, page, pageSize int) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, recipientIDs []string) (int, error)
	MarkAllAsRead(ctx context.Context, recipientIDs []string) error
}
