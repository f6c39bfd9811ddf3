package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"

	"biodb-backend-go/internal/db"
)

const (
	HasherSHA256   = "sha256"
	HasherArgon2id = "argon2id"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	StoragePath       string
	DatabaseDriver    string
	DatabaseURL       string
	JWTSecret         string
	JWTIssuer         string
	SessionTTLSeconds int64
	PasswordHasher    string
	AuditLogout       bool
	CorsOrigins       []string
	Port              string
	LogDir            string
	LogRetentionDays  int
	LogLevel          string
}

func Load() Config {
	cfg := Config{
		StoragePath:       envOr("STORAGE_PATH", "biological_database.db"),
		DatabaseDriver:    strings.ToLower(envOr("DATABASE_DRIVER", db.DriverSQLite)),
		DatabaseURL:       envOr("DATABASE_URL", ""),
		JWTSecret:         envOr("JWT_SECRET", ""),
		JWTIssuer:         envOr("JWT_ISSUER", "biodb"),
		SessionTTLSeconds: int64(envOrInt("SESSION_TTL_SECONDS", 14400)),
		PasswordHasher:    strings.ToLower(envOr("PASSWORD_HASHER", HasherSHA256)),
		AuditLogout:       envOrBool("AUDIT_LOGOUT", false),
		CorsOrigins:       parseCSV(envOr("CORS_ORIGINS", "")),
		Port:              envOr("PORT", "8080"),
		LogDir:            envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:  clampRetention(envOrInt("LOG_RETENTION_DAYS", 7)),
		LogLevel:          strings.ToLower(envOr("LOG_LEVEL", "info")),
	}
	if cfg.JWTSecret == "" {
		// sessions live in memory, so a per-process secret loses nothing on restart
		cfg.JWTSecret = randomSecret()
	}
	return cfg
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DatabaseDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.StoragePath
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clampRetention(days int) int {
	if days <= 0 {
		return 7
	}
	if days > 7 {
		return 7
	}
	return days
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("config: read random secret: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
