package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/ports"

	"github.com/rs/zerolog"
)

// sessionIDBytes is the entropy of a session ID (hex-encoded in the cookie)
const sessionIDBytes = 32

// SessionManager binds browser cookies to sessions in a SessionRepository
type SessionManager struct {
	repo       ports.SessionRepository
	cookieName string
	secure     bool
	ttl        time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSessionManager creates a cookie session manager
func NewSessionManager(repo ports.SessionRepository, cookieName string, secure bool, ttl time.Duration, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		repo:       repo,
		cookieName: cookieName,
		secure:     secure,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Load returns the session named by the request cookie, or a new empty one
// when the cookie is missing, unknown or expired
func (m *SessionManager) Load(r *http.Request) (*domain.Session, error) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		session, err := m.repo.Get(r.Context(), c.Value)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		m.logger.Debug().Msg("Session cookie unknown or expired, starting a new session")
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	return domain.NewSession(id, m.now(), m.ttl), nil
}

// Save persists the session and refreshes the cookie
func (m *SessionManager) Save(ctx context.Context, w http.ResponseWriter, session *domain.Session) error {
	session.Touch(m.now(), m.ttl)
	if err := m.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
