package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:         "test",
		Port:        8080,
		DBURL:       "postgres://u:p@localhost:5432/db?sslmode=disable",
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		JWTTokenTTL: TokenTTL,
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "short"

	require.Error(t, cfg.Validate())
}

func TestValidate_PlaceholderSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "naturlife-secret-key-change-in-production"

	assert.ErrorIs(t, cfg.Validate(), ErrPlaceholderSecret)
}

func TestValidate_UnknownEnv(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "staging"

	require.Error(t, cfg.Validate())
}

func TestValidate_TokenTTLIsFixed(t *testing.T) {
	cfg := validConfig()
	cfg.JWTTokenTTL = time.Hour

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTTokenTTL")
}

func TestLoad_IgnoresTokenTTLOverride(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz0123456789")
	t.Setenv("JWT_TTL_HOURS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTokenTTL)
}

func TestLoad_FailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "test")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz0123456789")
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTokenTTL)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestLoad_WorkerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz0123456789")
	t.Setenv("WORKER_POLL_MS", "")
	t.Setenv("NOTIFIER_FAIL", "true")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.WorkerPoll)
	assert.True(t, cfg.NotifierFail)
	assert.Empty(t, cfg.TrustedProxies)
}
