package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// ShopifyStub is a fake Shopify admin host. Requests sent to any https host
// through Client() end up here.
type ShopifyStub struct {
	Server *httptest.Server

	// TokenStatus and TokenBody answer POST /admin/oauth/access_token.
	TokenStatus int
	TokenBody   any

	// ProductsStatus and ProductsBody answer GET /admin/products.json.
	ProductsStatus int
	ProductsBody   any

	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]string
}

// NewShopifyStub starts a stub that grants "tok123" and lists one product.
func NewShopifyStub(t *testing.T) *ShopifyStub {
	t.Helper()
	s := &ShopifyStub{
		TokenStatus:    http.StatusOK,
		TokenBody:      map[string]string{"access_token": "tok123", "scope": "read_products"},
		ProductsStatus: http.StatusOK,
		ProductsBody: map[string]any{
			"products": []map[string]any{{"id": 1, "title": "Blue Hat", "vendor": "Acme", "handle": "blue-hat"}},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *ShopifyStub) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if r.Body != nil && r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/admin/oauth/access_token":
		writeJSON(w, s.TokenStatus, s.TokenBody)
	case r.Method == http.MethodGet && r.URL.Path == "/admin/products.json":
		writeJSON(w, s.ProductsStatus, s.ProductsBody)
	default:
		http.NotFound(w, r)
	}
}

// Client returns an HTTP client routing every request to the stub.
func (s *ShopifyStub) Client() *http.Client {
	target, _ := url.Parse(s.Server.URL)
	return &http.Client{Transport: &RewriteTransport{Target: target}}
}

// Requests returns the requests received so far.
func (s *ShopifyStub) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// LastBody returns the JSON body of the most recent request.
func (s *ShopifyStub) LastBody() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[len(s.bodies)-1]
}

// RewriteTransport sends requests to Target, keeping the original host in
// X-Original-Host.
type RewriteTransport struct {
	Target *url.URL
	Base   http.RoundTripper
}

func (t *RewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Original-Host", req.URL.Host)
	out.URL.Scheme = t.Target.Scheme
	out.URL.Host = t.Target.Host
	out.Host = t.Target.Host
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
