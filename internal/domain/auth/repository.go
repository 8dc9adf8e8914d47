package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository persists hashed refresh tokens so they can be revoked.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}
