package application

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/infrastructure/metrics"
	"shopify-oauth-app/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Flow variants
const (
	// VariantSplit sends unauthenticated users through /login and redirects
	// back to / after the callback
	VariantSplit = "split"
	// VariantInline redirects straight to Shopify and renders products from
	// the callback itself
	VariantInline = "inline"
)

// Paths the flow redirects to
const (
	PathIndex = "/"
	PathLogin = "/login"
)

// ViewProducts is the template rendered with a ProductsView
const ViewProducts = "products"

// ProductLimit is the number of products requested from the Admin API
const ProductLimit = 10

// ProductsView is the data handed to the products template
type ProductsView struct {
	Shop     string
	Products []goshopify.Product
}

// OAuthService drives the authorization code flow for one browser session
// at a time. Handlers pass in the session; the caller persists it afterwards.
type OAuthService struct {
	client   ports.ShopifyClient
	verifier ports.SignatureVerifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	variant  string
	now      func() time.Time
}

// NewOAuthService creates a new OAuth flow service
func NewOAuthService(
	client ports.ShopifyClient,
	verifier ports.SignatureVerifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
	variant string,
) *OAuthService {
	if variant == "" {
		variant = VariantSplit
	}
	return &OAuthService{
		client:   client,
		verifier: verifier,
		metrics:  m,
		logger:   logger,
		variant:  variant,
		now:      time.Now,
	}
}

// Variant returns the configured flow variant
func (s *OAuthService) Variant() string {
	return s.variant
}

// Login redirects to Shopify's authorization page for the session's shop
func (s *OAuthService) Login(ctx context.Context, session *domain.Session) domain.Outcome {
	return s.authorize(session)
}

// Index selects the shop named by ?shop= (when present, even if empty) and
// renders its products. Sessions without a usable token are sent back
// through authorization.
func (s *OAuthService) Index(ctx context.Context, session *domain.Session, query url.Values) domain.Outcome {
	if query.Has("shop") {
		shop := query.Get("shop")
		if session.SwitchShop(shop) {
			s.logger.Info().Str("shop", shop).Msg("Shop changed, session state cleared")
		}
	}

	if !session.Authenticated() {
		return s.reauthenticate(session)
	}

	return s.renderProducts(ctx, session)
}

// Callback verifies Shopify's redirect, exchanges the code and stores the token
func (s *OAuthService) Callback(ctx context.Context, session *domain.Session, query url.Values) domain.Outcome {
	if !s.verifier.Verify(query, s.now()) {
		s.logger.Warn().Err(domain.ErrInvalidSignature).Str("shop", query.Get("shop")).Msg("Rejected callback")
		s.metrics.IncrementCallback(metrics.ResultInvalidSignature)
		return domain.ClientError(http.StatusForbidden, domain.BodyInvalidSignature)
	}

	if !domain.IsValidShop(session.Shop) {
		// A fresh browser session (e.g. install started from the Shopify admin)
		// has no shop yet; the signed callback names it.
		callbackShop := query.Get("shop")
		if !domain.IsValidShop(callbackShop) {
			s.logger.Warn().Err(domain.ErrInvalidShop).Str("shop", callbackShop).Msg("Rejected callback")
			s.metrics.IncrementCallback(metrics.ResultInvalidShop)
			return domain.ClientError(http.StatusForbidden, domain.BodyInvalidShop)
		}
		session.SwitchShop(callbackShop)
	}
	shop := session.Shop

	start := time.Now()
	token, err := s.client.ExchangeToken(ctx, shop, query.Get("code"))
	s.metrics.ObserveTokenExchange(start)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		s.metrics.IncrementCallback(metrics.ResultExchangeFailed)
		return domain.ServerError(http.StatusInternalServerError, domain.BodyTokenExchange)
	}

	session.Authenticate(token)
	s.metrics.IncrementCallback(metrics.ResultSuccess)
	s.logger.Info().Str("shop", shop).Msg("Shop authenticated")

	if s.variant == VariantInline {
		return s.renderProducts(ctx, session)
	}
	return domain.Redirect(PathIndex)
}

func (s *OAuthService) renderProducts(ctx context.Context, session *domain.Session) domain.Outcome {
	products, err := s.client.GetProducts(ctx, session.Shop, session.AccessToken, ProductLimit)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamAPI) {
			s.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to fetch products")
			s.metrics.IncrementProductFetch(metrics.ResultError)
			return domain.ServerError(http.StatusInternalServerError, domain.BodyInternal)
		}
		// The token was revoked or the app uninstalled; start over.
		s.logger.Info().Err(err).Str("shop", session.Shop).Msg("Products request rejected, re-authenticating")
		s.metrics.IncrementProductFetch(metrics.ResultRejected)
		session.Invalidate()
		return s.reauthenticate(session)
	}

	s.metrics.IncrementProductFetch(metrics.ResultSuccess)
	return domain.Render(ViewProducts, ProductsView{Shop: session.Shop, Products: products})
}

// reauthenticate restarts the flow the way the configured variant does.
func (s *OAuthService) reauthenticate(session *domain.Session) domain.Outcome {
	if s.variant == VariantInline {
		return s.authorize(session)
	}
	return domain.Redirect(PathLogin)
}

func (s *OAuthService) authorize(session *domain.Session) domain.Outcome {
	if !domain.IsValidShop(session.Shop) {
		s.logger.Warn().Err(domain.ErrInvalidShop).Str("shop", session.Shop).Msg("Refusing to authorize")
		return domain.ClientError(http.StatusForbidden, domain.BodyInvalidShop)
	}

	s.metrics.IncrementLoginRedirect()
	return domain.Redirect(s.client.GenerateAuthURL(session.Shop))
}
