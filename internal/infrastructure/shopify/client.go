package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every outbound call to Shopify.
const DefaultTimeout = 10 * time.Second

// AccessTokenHeader carries the access token on Admin API calls.
const AccessTokenHeader = "X-Shopify-Access-Token"

// maxErrorBody caps how much of a failed response is read for logging.
const maxErrorBody = 1 << 10

type client struct {
	apiKey      string
	apiSecret   string
	scope       string
	redirectURI string
	httpClient  *http.Client
	logger      zerolog.Logger
}

// Option configures the client
type Option func(*client)

// WithHTTPClient replaces the HTTP client used for outbound calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// NewClient creates a new Shopify client adapter
func NewClient(apiKey, apiSecret, scope, redirectURI string, opts ...Option) ports.ShopifyClient {
	c := &client{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		scope:       scope,
		redirectURI: redirectURI,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// shopHost strips the optional trailing slash a valid shop may carry.
func shopHost(shop string) string {
	return strings.TrimSuffix(shop, "/")
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string) string {
	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s",
		shopHost(shop),
		url.QueryEscape(c.apiKey),
		url.QueryEscape(c.scope),
		url.QueryEscape(c.redirectURI),
	)

	c.logger.Info().
		Str("shop", shop).
		Str("scope", c.scope).
		Msg("Generated OAuth authorization URL")

	return authURL
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     c.apiKey,
		"client_secret": c.apiSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shopHost(shop))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("shop", shop).
			Int("status", resp.StatusCode).
			Str("body", string(bodyBytes)).
			Msg("Token exchange rejected")
		return "", domain.NewUpstreamError(domain.ErrTokenExchange, "POST /admin/oauth/access_token", resp.StatusCode)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %w", domain.ErrTokenExchange, err)
	}
	if tokenResponse.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access_token", domain.ErrTokenExchange)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("granted_scope", tokenResponse.Scope).
		Msg("Token exchange succeeded")

	return tokenResponse.AccessToken, nil
}

// Product API

func (c *client) GetProducts(ctx context.Context, shop string, accessToken string, limit int) ([]goshopify.Product, error) {
	productsURL := fmt.Sprintf("https://%s/admin/products.json?limit=%d", shopHost(shop), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create products request: %w", err)
	}
	req.Header.Set(AccessTokenHeader, accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("shop", shop).
			Int("status", resp.StatusCode).
			Msg("Products request rejected")
		return nil, domain.NewUpstreamError(domain.ErrUpstreamAPI, "GET /admin/products.json", resp.StatusCode)
	}

	var productsResponse struct {
		Products []goshopify.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productsResponse); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return productsResponse.Products, nil
}
