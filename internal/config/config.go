package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// RedemptionPolicy controls how many rewards a cart may redeem at once.
type RedemptionPolicy string

const (
	// RedemptionSingle allows one applied reward per cart; applying another
	// replaces the current one.
	RedemptionSingle RedemptionPolicy = "single"
	// RedemptionPerEntry allows one applied reward per cart entry.
	RedemptionPerEntry RedemptionPolicy = "per-entry"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string
	Currency           string
	RedemptionPolicy   RedemptionPolicy
	WhatsAppNumber     string
	MaxAdults          int
	MaxChildren        int
	MaxInfants         int
	CartCookieName     string
	CartCookieTTL      time.Duration
	CSRFHeader         string
	CSRFCookie         string
	CatalogCacheTTL    time.Duration
	RewardsCacheTTL    time.Duration
	IdempotencyTTL     time.Duration
	CartLockTTL        time.Duration
	RateLimitWindow    time.Duration
	RateLimitMax       int
	BodyLimitBytes     int64
	AccessTokenTTL     time.Duration
	CookieDomain       string
	CookieSecure       bool
	CookieSameSite     http.SameSite
	LogFormat          string
	LogLevel           string
	MetricsNamespace   string
	TracingEnabled     bool
	TracingEndpoint    string
	TracingSampling    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Currency:           valueOrDefault(k.String("CURRENCY"), "USD"),
		RedemptionPolicy:   parsePolicy(k.String("REWARDS_REDEMPTION_POLICY")),
		WhatsAppNumber:     strings.TrimSpace(k.String("WHATSAPP_NUMBER")),
		MaxAdults:          parseInt(k.String("CART_MAX_ADULTS"), 16),
		MaxChildren:        parseInt(k.String("CART_MAX_CHILDREN"), 16),
		MaxInfants:         parseInt(k.String("CART_MAX_INFANTS"), 8),
		CartCookieName:     valueOrDefault(k.String("CART_COOKIE_NAME"), "bcart"),
		CartCookieTTL:      parseDuration(k.String("CART_COOKIE_TTL"), "720h"),
		CSRFHeader:         valueOrDefault(k.String("CSRF_HEADER"), "X-CSRF-Token"),
		CSRFCookie:         valueOrDefault(k.String("CSRF_COOKIE"), "csrf_token"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		RewardsCacheTTL:    parseDuration(k.String("REWARDS_CACHE_TTL"), "1m"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),
		CartLockTTL:        parseDuration(k.String("CART_LOCK_TTL"), "15s"),
		RateLimitWindow:    parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:       parseInt(k.String("RATE_LIMIT_MAX"), 60),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "15m"),
		CookieDomain:       strings.TrimSpace(k.String("COOKIE_DOMAIN")),
		CookieSecure:       parseBool(k.String("COOKIE_SECURE")),
		CookieSameSite:     parseSameSite(k.String("COOKIE_SAMESITE")),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), "info"),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "travel"),
		TracingEnabled:     parseBool(k.String("TRACING_ENABLED")),
		TracingEndpoint:    strings.TrimSpace(k.String("TRACING_ENDPOINT")),
		TracingSampling:    parseFloat(k.String("TRACING_SAMPLING_RATIO"), 1.0),
	}

	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func parsePolicy(value string) RedemptionPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(RedemptionPerEntry):
		return RedemptionPerEntry
	default:
		return RedemptionSingle
	}
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
