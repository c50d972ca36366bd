package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedirectURI = "http://localhost:4567/auth/shopify/callback"

func TestGenerateAuthURL(t *testing.T) {
	c := NewClient("key123", "secret", "read_products,write_orders", testRedirectURI)

	raw := c.GenerateAuthURL("foo.myshopify.com")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "foo.myshopify.com", u.Host)
	assert.Equal(t, "/admin/oauth/authorize", u.Path)
	assert.Equal(t, "key123", u.Query().Get("client_id"))
	assert.Equal(t, "read_products,write_orders", u.Query().Get("scope"))
	assert.Equal(t, testRedirectURI, u.Query().Get("redirect_uri"))
	assert.Contains(t, raw, "redirect_uri=http%3A%2F%2Flocalhost%3A4567%2Fauth%2Fshopify%2Fcallback")
	assert.NotContains(t, raw, "secret")
}

func TestGenerateAuthURLTrailingSlash(t *testing.T) {
	c := NewClient("key123", "secret", "read_products", testRedirectURI)
	raw := c.GenerateAuthURL("foo.myshopify.com/")
	assert.Contains(t, raw, "https://foo.myshopify.com/admin/oauth/authorize?")
}

func TestExchangeToken(t *testing.T) {
	stub := testutil.NewShopifyStub(t)
	c := NewClient("key123", "secret456", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

	token, err := c.ExchangeToken(context.Background(), "foo.myshopify.com", "code789")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "foo.myshopify.com", reqs[0].Header.Get("X-Original-Host"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, map[string]string{
		"client_id":     "key123",
		"client_secret": "secret456",
		"code":          "code789",
	}, stub.LastBody())
}

func TestExchangeTokenFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		stub := testutil.NewShopifyStub(t)
		stub.TokenStatus = http.StatusBadRequest
		stub.TokenBody = map[string]string{"error": "invalid_request"}
		c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

		_, err := c.ExchangeToken(context.Background(), "foo.myshopify.com", "code")
		require.ErrorIs(t, err, domain.ErrTokenExchange)

		var upstream *domain.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	})

	t.Run("200 without a token", func(t *testing.T) {
		stub := testutil.NewShopifyStub(t)
		stub.TokenBody = map[string]string{"scope": "read_products"}
		c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

		_, err := c.ExchangeToken(context.Background(), "foo.myshopify.com", "code")
		require.ErrorIs(t, err, domain.ErrTokenExchange)
	})

	t.Run("malformed body", func(t *testing.T) {
		stub := testutil.NewShopifyStub(t)
		stub.TokenBody = "not an object"
		c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

		_, err := c.ExchangeToken(context.Background(), "foo.myshopify.com", "code")
		require.ErrorIs(t, err, domain.ErrTokenExchange)
	})

	t.Run("transport error", func(t *testing.T) {
		stub := testutil.NewShopifyStub(t)
		hc := stub.Client()
		stub.Server.Close()
		c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(hc))

		_, err := c.ExchangeToken(context.Background(), "foo.myshopify.com", "code")
		require.ErrorIs(t, err, domain.ErrTokenExchange)
	})
}

func TestGetProducts(t *testing.T) {
	stub := testutil.NewShopifyStub(t)
	c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

	products, err := c.GetProducts(context.Background(), "foo.myshopify.com", "tok123", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Blue Hat", products[0].Title)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/admin/products.json", reqs[0].URL.Path)
	assert.Equal(t, "10", reqs[0].URL.Query().Get("limit"))
	assert.Equal(t, "tok123", reqs[0].Header.Get(AccessTokenHeader))
	assert.NotContains(t, reqs[0].URL.String(), "tok123")
}

func TestGetProductsRejected(t *testing.T) {
	stub := testutil.NewShopifyStub(t)
	stub.ProductsStatus = http.StatusUnauthorized
	stub.ProductsBody = map[string]string{"errors": "[API] Invalid API key or access token"}
	c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(stub.Client()))

	_, err := c.GetProducts(context.Background(), "foo.myshopify.com", "stale", 10)
	require.ErrorIs(t, err, domain.ErrUpstreamAPI)
	assert.NotErrorIs(t, err, domain.ErrTokenExchange)
}

func TestGetProductsTransportErrorIsNotRejection(t *testing.T) {
	stub := testutil.NewShopifyStub(t)
	hc := stub.Client()
	stub.Server.Close()
	c := NewClient("key", "secret", "read_products", testRedirectURI, WithHTTPClient(hc))

	_, err := c.GetProducts(context.Background(), "foo.myshopify.com", "tok123", 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUpstreamAPI)
}
