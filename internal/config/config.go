package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cookies    CookieConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
	BcryptCost int
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
	// TrustProxy honors X-Forwarded-For and X-Real-IP for the client address.
	TrustProxy bool
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type JWTConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  string
	RefreshTokenTTL string
}

type CookieConfig struct {
	Secure bool
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	GlobalPerMinute int
	LoginPerMinute  int
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			CORSOrigins: splitList(os.Getenv("CORS_ORIGIN")),
			TrustProxy:  os.Getenv("TRUST_PROXY") == "true",
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
			AccessTokenTTL:  getEnv("ACCESS_TOKEN_TTL", "15m"),
			RefreshTokenTTL: getEnv("REFRESH_TOKEN_TTL", "7d"),
		},
		Cookies: CookieConfig{
			Secure: os.Getenv("COOKIE_SECURE") == "true",
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			GlobalPerMinute: getIntEnv("RATE_LIMIT_GLOBAL_PER_MINUTE", 30),
			LoginPerMinute:  getIntEnv("RATE_LIMIT_LOGIN_PER_MINUTE", 5),
		},
		BcryptCost: getIntEnv("BCRYPT_COST", 10),
	}
}

// Validate reports configuration the process cannot start with. Missing JWT
// secrets are not fatal; see MissingSecrets.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// MissingSecrets lists the JWT secret variables that are unset.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.JWT.AccessSecret == "" {
		missing = append(missing, "JWT_ACCESS_SECRET")
	}
	if c.JWT.RefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}
	return missing
}

// DSN returns DATABASE_URL when set, otherwise a URL built from the
// POSTGRES_* variables.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
