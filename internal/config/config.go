// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// AuthConfig holds authentication and identity provider configuration.
type AuthConfig struct {
	// OIDC / JWKS configuration
	IssuerURL string // OIDC issuer URL
	JWKSURL   string // Override JWKS URL (if no .well-known discovery)
	JWTSecret string // HS256 shared secret for local/dev JWT auth
	Audience  string // Required JWT audience claim

	// Claims carrying the principal's attributes.
	RoleClaim     string // default "role"
	TenantClaim   string // default "tenant_id"
	EmployeeClaim string // default "employee_id"
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// Enabled reports whether any token validation is configured.
func (a *AuthConfig) Enabled() bool {
	return a.OIDCEnabled() || a.JWTSecret != ""
}

// Validate checks that the auth configuration is internally consistent.
func (a *AuthConfig) Validate() error {
	if !a.Enabled() {
		return fmt.Errorf("at least one of JWT_SECRET, AUTH_ISSUER_URL or AUTH_JWKS_URL must be set")
	}
	if a.IssuerURL != "" && a.Audience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}
	return nil
}

// Config holds the configuration of the approval service.
type Config struct {
	DBDriver    string // "sqlite3" (default) or "postgres"
	DBPath      string // SQLite file (default "hr_approvals.sqlite")
	DatabaseURL string // Postgres DSN, required when DBDriver is postgres
	DBMaxConns  int    // read pool size on SQLite, pool size on Postgres (0 = driver default)
	ListenAddr  string // HTTP listen address (default ":8080")
	LogLevel    string // log level: debug, info, warn, error (default "info")
	Env         string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 50)
	RateLimitBurst int     // burst capacity (default 100)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Auth holds identity provider and authentication configuration.
	Auth AuthConfig

	// Approval engine settings.
	ChainMaxDepth         int    // supervisor levels walked (default 5)
	PolicyFile            string // optional YAML tenure table and role aliases
	ExpirySchedule        string // cron spec for balance expiry (default "@daily", "off" disables)
	BalanceCarryoverYears int    // years a balance stays usable after its own (default 1)

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ExpiryEnabled reports whether the expiry scheduler should run.
func (c *Config) ExpiryEnabled() bool {
	return !strings.EqualFold(c.ExpirySchedule, "off")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:       strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER"))),
		DBPath:         os.Getenv("DB_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Env:            os.Getenv("ENV"),
		PolicyFile:     os.Getenv("POLICY_FILE"),
		ExpirySchedule: strings.TrimSpace(os.Getenv("BALANCE_EXPIRY_SCHEDULE")),
	}

	var err error
	if cfg.DBMaxConns, err = intEnv("DB_MAX_CONNS", 0); err != nil {
		return nil, err
	}
	if cfg.ChainMaxDepth, err = intEnv("APPROVAL_CHAIN_MAX_DEPTH", 5); err != nil {
		return nil, err
	}
	if cfg.ChainMaxDepth < 1 {
		return nil, fmt.Errorf("APPROVAL_CHAIN_MAX_DEPTH must be at least 1, got %d", cfg.ChainMaxDepth)
	}
	if cfg.BalanceCarryoverYears, err = intEnv("BALANCE_CARRYOVER_YEARS", 1); err != nil {
		return nil, err
	}
	if cfg.BalanceCarryoverYears < 0 {
		return nil, fmt.Errorf("BALANCE_CARRYOVER_YEARS must not be negative, got %d", cfg.BalanceCarryoverYears)
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Auth config
	cfg.Auth = AuthConfig{
		IssuerURL:     os.Getenv("AUTH_ISSUER_URL"),
		JWKSURL:       os.Getenv("AUTH_JWKS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Audience:      os.Getenv("AUTH_AUDIENCE"),
		RoleClaim:     os.Getenv("AUTH_ROLE_CLAIM"),
		TenantClaim:   os.Getenv("AUTH_TENANT_CLAIM"),
		EmployeeClaim: os.Getenv("AUTH_EMPLOYEE_CLAIM"),
	}

	// Auth config defaults
	if cfg.Auth.RoleClaim == "" {
		cfg.Auth.RoleClaim = "role"
	}
	if cfg.Auth.TenantClaim == "" {
		cfg.Auth.TenantClaim = "tenant_id"
	}
	if cfg.Auth.EmployeeClaim == "" {
		cfg.Auth.EmployeeClaim = "employee_id"
	}

	// Defaults
	switch cfg.DBDriver {
	case "", "sqlite", DriverSQLite:
		cfg.DBDriver = DriverSQLite
	case "postgresql", "pgx", DriverPostgres:
		cfg.DBDriver = DriverPostgres
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q: must be %q or %q", cfg.DBDriver, DriverSQLite, DriverPostgres)
	}
	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "hr_approvals.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.ExpirySchedule == "" {
		cfg.ExpirySchedule = "@daily"
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "no authentication configured: set JWT_SECRET or AUTH_ISSUER_URL/AUTH_JWKS_URL")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.OIDCEnabled() {
			return nil, fmt.Errorf("OIDC must be configured in production (set AUTH_ISSUER_URL or AUTH_JWKS_URL)")
		}
		if err := cfg.Auth.Validate(); err != nil {
			return nil, err
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Environment variables take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
