package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	APIKey   APIKeyConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// AuthConfig keeps raw env values; they are parsed and validated when the
// auth service is constructed so a bad value fails startup, not a request.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTTLMin   string
	RefreshTTLDays string
	ClockSkewSec   string
	BcryptCost     string
}

type APIKeyConfig struct {
	Header       string
	PathPrefixes []string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTIssuer:      getenv("JWT_ISSUER", "authgate"),
			JWTAudience:    getenv("JWT_AUDIENCE", "authgate-api"),
			AccessTTLMin:   getenv("ACCESS_TOKEN_TTL_MIN", "15"),
			RefreshTTLDays: getenv("REFRESH_TOKEN_TTL_DAYS", "7"),
			ClockSkewSec:   getenv("CLOCK_SKEW_SEC", "5"),
			BcryptCost:     getenv("BCRYPT_COST", "12"),
		},
		APIKey: APIKeyConfig{
			Header:       getenv("API_KEY_HEADER", "X-API-Key"),
			PathPrefixes: splitList(getenv("API_KEY_PATH_PREFIXES", "/partner")),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
