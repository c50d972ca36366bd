package ports

import (
	"context"
	"net/url"
	"time"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify endpoints used by the OAuth flow
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string) string
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// Product API
	GetProducts(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Product, error)
}

// SignatureVerifier checks that callback query parameters were signed by Shopify
type SignatureVerifier interface {
	Verify(query url.Values, now time.Time) bool
}
