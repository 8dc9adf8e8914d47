package notification

import "context"

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// recipientIDs lists the caller's own id plus any group channels it belongs to
	GetNotifications(ctx context.Context, recipientIDs []string, page, pageSize int) (*NotificationListResponse, error)
	MarkAllAsRead(ctx context.Context, recipientIDs []string) error

	// SSE subscription
	Subscribe(ctx context.Context, recipientIDs []string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
