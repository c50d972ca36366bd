package repository

import (
	"context"
	"sync"
	"time"

	"shopify-oauth-app/internal/domain"
)

// DefaultCleanupInterval is how often StartCleanup sweeps expired sessions
const DefaultCleanupInterval = time.Minute

// MemorySessionRepository implements SessionRepository in process memory.
// Sessions are lost on restart.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty in-memory repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return newMemorySessionRepository(time.Now)
}

func newMemorySessionRepository(now func() time.Time) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]domain.Session),
		now:      now,
	}
}

// Get returns a copy of the stored session
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		r.mu.Lock()
		// A Save may have refreshed the entry since the read lock was released.
		if current, ok := r.sessions[id]; ok && current.Expired(r.now()) {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	return &session, nil
}

// Save stores a copy of session
func (r *MemorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

// Delete removes the session
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteExpired removes every expired session and returns how many it dropped
func (r *MemorySessionRepository) DeleteExpired(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	deleted := 0
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted
}

// StartCleanup sweeps expired sessions every interval until ctx is done
func (r *MemorySessionRepository) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.DeleteExpired(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *MemorySessionRepository) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
