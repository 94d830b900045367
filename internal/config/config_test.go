package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "CORS_ORIGIN", "STORAGE_DRIVER", "DATABASE_URL", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "COOKIE_SECURE", "TRUST_PROXY", "LOG_LEVEL", "LOG_FORMAT",
		"RATE_LIMIT_GLOBAL_PER_MINUTE", "RATE_LIMIT_LOGIN_PER_MINUTE", "BCRYPT_COST",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, StorageDriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "15m", cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "7d", cfg.JWT.RefreshTokenTTL)
	assert.False(t, cfg.Cookies.Secure)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, 30, cfg.RateLimit.GlobalPerMinute)
	assert.Equal(t, 5, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.ElementsMatch(t, []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET"}, cfg.MissingSecrets())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test,")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("RATE_LIMIT_LOGIN_PER_MINUTE", "not-a-number")
	t.Setenv("BCRYPT_COST", "12")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, StorageDriverMemory, cfg.Database.Driver)
	assert.True(t, cfg.Cookies.Secure)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, 5, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.MissingSecrets())
}

func TestCookieSecureRequiresExactTrue(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "TRUE")
	assert.False(t, Load().Cookies.Secure)

	t.Setenv("TRUST_PROXY", "1")
	assert.False(t, Load().Server.TrustProxy)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "mongo"}}
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", Name: "tasks"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/tasks?sslmode=disable", d.DSN())

	d.URL = "postgres://override"
	assert.Equal(t, "postgres://override", d.DSN())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
