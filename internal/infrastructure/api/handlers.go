package api

import (
	"context"
	"encoding/json"
	"net/http"

	"shopify-oauth-app/internal/application"
	"shopify-oauth-app/internal/domain"

	"github.com/rs/zerolog"
)

// Route paths
const (
	RouteIndex    = application.PathIndex
	RouteLogin    = application.PathLogin
	RouteCallback = "/auth/shopify/callback"
	RouteHealth   = "/health"
	RouteMetrics  = "/metrics"
)

// step is one flow operation run against the request's session
type step func(ctx context.Context, session *domain.Session, r *http.Request) domain.Outcome

// flowHandler loads the session, runs fn, persists the session and writes the outcome
func flowHandler(name string, fn step, sessions *SessionManager, renderer *Renderer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := sessions.Load(r)
		if err != nil {
			logger.Error().Err(err).Str("handler", name).Msg("Failed to load session")
			writePlain(w, http.StatusInternalServerError, domain.BodyInternal)
			return
		}

		outcome := fn(ctx, session, r)

		if err := sessions.Save(ctx, w, session); err != nil {
			logger.Error().Err(err).Str("handler", name).Msg("Failed to save session")
			writePlain(w, http.StatusInternalServerError, domain.BodyInternal)
			return
		}

		logger.Debug().
			Str("handler", name).
			Str("shop", session.Shop).
			Str("outcome", outcome.Kind.String()).
			Int("status", outcome.Status).
			Msg("Flow step completed")

		if err := renderer.Write(w, r, outcome); err != nil {
			logger.Error().Err(err).Str("handler", name).Msg("Failed to write response")
		}
	}
}

// loginHandler starts authorization for the shop stored in the session
func loginHandler(svc *application.OAuthService, sessions *SessionManager, renderer *Renderer, logger zerolog.Logger) http.HandlerFunc {
	return flowHandler("login", func(ctx context.Context, session *domain.Session, r *http.Request) domain.Outcome {
		return svc.Login(ctx, session)
	}, sessions, renderer, logger)
}

// indexHandler lists products for the shop in ?shop= or the session
func indexHandler(svc *application.OAuthService, sessions *SessionManager, renderer *Renderer, logger zerolog.Logger) http.HandlerFunc {
	return flowHandler("index", func(ctx context.Context, session *domain.Session, r *http.Request) domain.Outcome {
		return svc.Index(ctx, session, r.URL.Query())
	}, sessions, renderer, logger)
}

// callbackHandler handles Shopify's redirect after the merchant approves the app
func callbackHandler(svc *application.OAuthService, sessions *SessionManager, renderer *Renderer, logger zerolog.Logger) http.HandlerFunc {
	return flowHandler("callback", func(ctx context.Context, session *domain.Session, r *http.Request) domain.Outcome {
		return svc.Callback(ctx, session, r.URL.Query())
	}, sessions, renderer, logger)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
