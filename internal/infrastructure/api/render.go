package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"shopify-oauth-app/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns flow outcomes into HTTP responses
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded views
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Write sends outcome. Error bodies are written verbatim as plain text.
func (rd *Renderer) Write(w http.ResponseWriter, r *http.Request, outcome domain.Outcome) error {
	switch outcome.Kind {
	case domain.OutcomeRedirect:
		http.Redirect(w, r, outcome.Location, http.StatusFound)
		return nil
	case domain.OutcomeRender:
		var buf bytes.Buffer
		if err := rd.templates.ExecuteTemplate(&buf, outcome.View+".html", outcome.Data); err != nil {
			writePlain(w, http.StatusInternalServerError, domain.BodyInternal)
			return fmt.Errorf("failed to render %s: %w", outcome.View, err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, err := buf.WriteTo(w)
		return err
	case domain.OutcomeClientError, domain.OutcomeServerError:
		writePlain(w, outcome.Status, outcome.Body)
		return nil
	default:
		writePlain(w, http.StatusInternalServerError, domain.BodyInternal)
		return fmt.Errorf("unknown outcome kind %d", outcome.Kind)
	}
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
