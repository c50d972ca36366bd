package api

import (
	"net/http"

	"shopify-oauth-app/internal/application"
	securitymiddleware "shopify-oauth-app/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Service        *application.OAuthService
	Sessions       *SessionManager
	Renderer       *Renderer
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP surface of the app
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	for _, mw := range securitymiddleware.AccessLogMiddleware(deps.Logger) {
		r.Use(mw)
	}
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowCredentials: true,
			MaxAge:           600,
		}))
	}

	r.Get(RouteHealth, healthHandler)
	if deps.Gatherer != nil {
		r.Handle(RouteMetrics, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get(RouteIndex, indexHandler(deps.Service, deps.Sessions, deps.Renderer, deps.Logger))
	r.Get(RouteCallback, callbackHandler(deps.Service, deps.Sessions, deps.Renderer, deps.Logger))
	if deps.Service.Variant() == application.VariantSplit {
		r.Get(RouteLogin, loginHandler(deps.Service, deps.Sessions, deps.Renderer, deps.Logger))
	}

	return r
}
