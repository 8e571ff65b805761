package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env   string `validate:"oneof=dev test prod"`
	Port  int    `validate:"min=1,max=65535"`
	DBURL string `validate:"required"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"min=0"`

	JWTSecret   string        `validate:"required,min=32"`
	JWTTokenTTL time.Duration `validate:"eq=168h"`

	AdminEmail    string `validate:"omitempty,email"`
	AdminPassword string `validate:"omitempty,min=6"`
	AdminName     string

	CORSOrigins    []string
	// TrustedProxies lists the proxy addresses whose X-Forwarded-For is honoured.
	// Empty means the socket peer is the client.
	TrustedProxies []string

	OTelEnabled  bool
	OTelEndpoint string

	CatalogCacheTTL time.Duration
	CartTTL         time.Duration

	WorkerConcurrency int `validate:"min=0,max=64"`
	WorkerPoll        time.Duration
	WorkerHealthPort  int `validate:"min=0,max=65535"`
	NotifierDelay     time.Duration
	NotifierFail      bool
}

// Placeholders that ship in sample env files. A deployment that still carries one of
// them is misconfigured.
var knownPlaceholderSecrets = map[string]struct{}{
	"naturlife-secret-key-change-in-production": {},
	"change-me-change-me-change-me-change-me":   {},
	"your-secret-key-here-your-secret-key-here": {},
}

var ErrPlaceholderSecret = errors.New("JWT_SECRET is a known placeholder value")

// TokenTTL is the fixed lifetime of an issued session token. It is not read from the environment.
const TokenTTL = 7 * 24 * time.Hour

var validate = validator.New()

// Load reads .env (when present) and the process environment, then validates the result.
// Callers are expected to exit on error: there is no default signing secret.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: getEnv("DATABASE_URL", buildDBURL()),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTokenTTL: TokenTTL,

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),

		OTelEnabled:  getEnv("OTEL_ENABLED", "false") == "true",
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		CatalogCacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 30)) * time.Second,
		CartTTL:         time.Duration(getEnvInt("CART_TTL_HOURS", 30*24)) * time.Hour,

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerPoll:        time.Duration(getEnvInt("WORKER_POLL_MS", 500)) * time.Millisecond,
		WorkerHealthPort:  getEnvInt("WORKER_HEALTH_PORT", 8081),
		NotifierDelay:     time.Duration(getEnvInt("NOTIFIER_SLEEP_MS", 0)) * time.Millisecond,
		NotifierFail:      getEnv("NOTIFIER_FAIL", "false") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, bad := knownPlaceholderSecrets[c.JWTSecret]; bad {
		return ErrPlaceholderSecret
	}

	return nil
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "naturlife")
	pass := getEnv("DB_PASSWORD", "naturlife")
	name := getEnv("DB_NAME", "naturlife")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout derives a bounded context for a single store round-trip.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
