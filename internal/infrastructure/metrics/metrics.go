package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Callback results.
const (
	ResultSuccess          = "success"
	ResultInvalidShop      = "invalid_shop"
	ResultInvalidSignature = "invalid_signature"
	ResultExchangeFailed   = "exchange_failed"
	ResultRejected         = "rejected"
	ResultError            = "error"
)

// Metrics tracks the OAuth flow.
type Metrics struct {
	LoginRedirects        prometheus.Counter
	Callbacks             *prometheus.CounterVec
	TokenExchangeDuration prometheus.Histogram
	ProductFetches        *prometheus.CounterVec
}

// New registers the flow collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginRedirects: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopify_oauth_login_redirects_total",
			Help: "Redirects issued to the Shopify authorization page",
		}),
		Callbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_oauth_callbacks_total",
			Help: "OAuth callbacks by result",
		}, []string{"result"}),
		TokenExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopify_oauth_token_exchange_duration_seconds",
			Help:    "Duration of authorization code exchanges",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ProductFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_oauth_product_fetches_total",
			Help: "Authenticated product list requests by result",
		}, []string{"result"}),
	}
}

// IncrementLoginRedirect records a redirect to Shopify.
func (m *Metrics) IncrementLoginRedirect() {
	m.LoginRedirects.Inc()
}

// IncrementCallback records one callback outcome.
func (m *Metrics) IncrementCallback(result string) {
	m.Callbacks.WithLabelValues(result).Inc()
}

// ObserveTokenExchange records an exchange that started at start.
func (m *Metrics) ObserveTokenExchange(start time.Time) {
	m.TokenExchangeDuration.Observe(time.Since(start).Seconds())
}

// IncrementProductFetch records one product list request.
func (m *Metrics) IncrementProductFetch(result string) {
	m.ProductFetches.WithLabelValues(result).Inc()
}
