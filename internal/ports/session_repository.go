package ports

import (
	"context"

	"shopify-oauth-app/internal/domain"
)

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	// Get returns domain.ErrSessionNotFound for unknown or expired IDs
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save creates or replaces the session, honouring its ExpiresAt
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes the session; deleting an unknown ID is not an error
	Delete(ctx context.Context, id string) error
}
