package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the process configuration, read from the environment.
type Config struct {
	// APIKey and SecretKey are the app credentials from the partner dashboard.
	// SecretKey both signs callbacks and authenticates the token exchange.
	APIKey    string `env:"API_KEY,required"`
	SecretKey string `env:"SECRET_KEY,required"`

	RedirectURI string `env:"REDIRECT_URI" envDefault:"http://localhost:4567/auth/shopify/callback"`
	Scope       string `env:"SCOPE" envDefault:"read_products"`

	Port        string        `env:"PORT" envDefault:"4567"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`

	FlowVariant     string `env:"FLOW_VARIANT" envDefault:"split"`
	SignatureScheme string `env:"SIGNATURE_SCHEME" envDefault:"literal"`

	Session SessionConfig

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// SessionConfig selects and configures the session store.
type SessionConfig struct {
	Backend       string        `env:"SESSION_BACKEND" envDefault:"memory"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"shopify_oauth_session"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RedisURL      string        `env:"REDIS_URL"`
	MongoURI      string        `env:"MONGODB_URI"`
	MongoDatabase string        `env:"MONGODB_DATABASE" envDefault:"shopify_oauth"`
}

// Load reads .env when present, then the environment. The returned bool
// reports whether a .env file was found.
func Load() (Config, bool, error) {
	// Convenience for local dev; production relies on real environment variables.
	foundDotenv := godotenv.Load() == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, foundDotenv, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, foundDotenv, err
	}
	return cfg, foundDotenv, nil
}

// Parse reads configuration from vars only. Used by tests.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown selectors and backends missing their address.
func (c Config) Validate() error {
	var errs []error

	switch c.FlowVariant {
	case "split", "inline":
	default:
		errs = append(errs, fmt.Errorf("FLOW_VARIANT must be split or inline, got %q", c.FlowVariant))
	}

	switch c.SignatureScheme {
	case "literal", "documented":
	default:
		errs = append(errs, fmt.Errorf("SIGNATURE_SCHEME must be literal or documented, got %q", c.SignatureScheme))
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis session backend"))
		}
	case BackendMongo:
		if c.Session.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be memory, redis or mongo, got %q", c.Session.Backend))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
