package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
)

// Poster delivers a text message to an external chat channel.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// mirroredService copies admin-channel notifications to a Poster after queueing them.
// Delivery failures are logged and never fail the caller.
type mirroredService struct {
	notification.Service
	poster  Poster
	timeout time.Duration
	wg      sync.WaitGroup
}

// WithAdminMirror wraps svc so every notification for AdminsRecipient is also posted via poster.
func WithAdminMirror(svc notification.Service, poster Poster) notification.Service {
	return &mirroredService{Service: svc, poster: poster, timeout: 10 * time.Second}
}

func (m *mirroredService) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := m.Service.QueueNotification(ctx, req); err != nil {
		return err
	}
	if req.RecipientID != notification.AdminsRecipient {
		return nil
	}

	text := fmt.Sprintf("*%s*\n%s", req.Title, req.Message)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := m.poster.Post(ctx, text); err != nil {
			slog.Warn("Failed to mirror admin notification", "type", req.Type, "error", err)
		}
	}()
	return nil
}

// Stop waits for in-flight posts before stopping the wrapped service.
func (m *mirroredService) Stop() {
	m.wg.Wait()
	m.Service.Stop()
}
