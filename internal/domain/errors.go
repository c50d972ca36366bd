package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShop means the shop parameter is not a myshopify subdomain
	ErrInvalidShop = errors.New("invalid shop domain")
	// ErrInvalidSignature means the callback was not signed by Shopify
	ErrInvalidSignature = errors.New("invalid callback signature")
	// ErrTokenExchange means the authorization code could not be traded for a token
	ErrTokenExchange = errors.New("token exchange failed")
	// ErrUpstreamAPI means an authenticated Admin API call was rejected
	ErrUpstreamAPI = errors.New("shopify api request failed")
	// ErrSessionNotFound is returned by session stores for unknown or expired IDs
	ErrSessionNotFound = errors.New("session not found")
)

// UpstreamError describes a non-200 answer from Shopify.
type UpstreamError struct {
	Op         string
	StatusCode int
	kind       error
}

// NewUpstreamError wraps a status code under one of the sentinel errors above.
func NewUpstreamError(kind error, op string, statusCode int) *UpstreamError {
	return &UpstreamError{Op: op, StatusCode: statusCode, kind: kind}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", e.kind, e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.kind
}
