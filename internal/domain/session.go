package domain

import (
	"strings"
	"time"
)

// Session is the per-browser state of the OAuth flow. The browser only holds
// the ID; everything else stays in the session store.
type Session struct {
	ID          string    `json:"id" bson:"_id"`
	Shop        string    `json:"shop" bson:"shop"`
	AccessToken string    `json:"access_token,omitempty" bson:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// NewSession creates an empty session that lives for ttl.
func NewSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Authenticated reports whether a token exchange succeeded for the current shop.
func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

// SwitchShop makes shop the current shop. Any state belonging to a different
// previous shop is dropped. It returns true when something was cleared.
// Valid shops are stored without their optional trailing slash.
func (s *Session) SwitchShop(shop string) bool {
	if IsValidShop(shop) {
		shop = strings.TrimSuffix(shop, "/")
	}
	if shop == s.Shop {
		return false
	}
	cleared := s.Shop != "" || s.AccessToken != ""
	s.Shop = shop
	s.AccessToken = ""
	return cleared
}

// Authenticate stores the token obtained for the current shop.
func (s *Session) Authenticate(accessToken string) {
	s.AccessToken = accessToken
}

// Invalidate forgets the access token, forcing a new authorization.
func (s *Session) Invalidate() {
	s.AccessToken = ""
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Touch records a mutation and extends the expiry window.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}
