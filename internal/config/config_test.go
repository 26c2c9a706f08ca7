package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/domain"
)

// clearEnv blanks every variable LoadFromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_DRIVER", "DB_PATH", "DATABASE_URL", "DB_MAX_CONNS", "LISTEN_ADDR", "LOG_LEVEL", "ENV",
		"POLICY_FILE", "BALANCE_EXPIRY_SCHEDULE", "APPROVAL_CHAIN_MAX_DEPTH", "BALANCE_CARRYOVER_YEARS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
		"AUTH_ISSUER_URL", "AUTH_JWKS_URL", "JWT_SECRET", "AUTH_AUDIENCE",
		"AUTH_ROLE_CLAIM", "AUTH_TENANT_CLAIM", "AUTH_EMPLOYEE_CLAIM",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "hr_approvals.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.ChainMaxDepth)
	assert.Equal(t, 1, cfg.BalanceCarryoverYears)
	assert.Equal(t, "@daily", cfg.ExpirySchedule)
	assert.True(t, cfg.ExpiryEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "role", cfg.Auth.RoleClaim)
	assert.Equal(t, "tenant_id", cfg.Auth.TenantClaim)
	assert.Equal(t, "employee_id", cfg.Auth.EmployeeClaim)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "no authentication configured")
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgresql")
	t.Setenv("DATABASE_URL", "postgres://hr@localhost/hr")
	t.Setenv("DB_MAX_CONNS", "12")
	t.Setenv("APPROVAL_CHAIN_MAX_DEPTH", "3")
	t.Setenv("BALANCE_CARRYOVER_YEARS", "2")
	t.Setenv("BALANCE_EXPIRY_SCHEDULE", "off")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTH_ROLE_CLAIM", "roles")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://hr@localhost/hr", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.DBMaxConns)
	assert.Equal(t, 3, cfg.ChainMaxDepth)
	assert.Equal(t, 2, cfg.BalanceCarryoverYears)
	assert.False(t, cfg.ExpiryEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "roles", cfg.Auth.RoleClaim)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "unsupported DB_DRIVER"},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL is required"},
		{"depth not a number", map[string]string{"APPROVAL_CHAIN_MAX_DEPTH": "deep"}, "not an integer"},
		{"depth zero", map[string]string{"APPROVAL_CHAIN_MAX_DEPTH": "0"}, "at least 1"},
		{"negative carryover", map[string]string{"BALANCE_CARRYOVER_YEARS": "-1"}, "must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFromEnv_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OIDC must be configured")

	t.Setenv("AUTH_ISSUER_URL", "https://idp.example")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_AUDIENCE")

	t.Setenv("AUTH_AUDIENCE", "hr-approvals")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS wildcard")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hr.example")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nDB_PATH=\"/data/hr.sqlite\"\nexport LOG_LEVEL='warn'\nLISTEN_ADDR=:9090\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("LISTEN_ADDR", ":7070")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "/data/hr.sqlite", os.Getenv("DB_PATH"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, ":7070", os.Getenv("LISTEN_ADDR"), "existing variables win")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy([]byte(`
tenure:
  - {years: 1, days: 10}
  - {years: 3, days: 15}
role_aliases:
  jefe: SUPERVISOR
`))
	require.NoError(t, err)
	assert.Equal(t, []domain.TenureBand{{Years: 1, Days: 10}, {Years: 3, Days: 15}}, p.Tenure)
	assert.Equal(t, map[string]string{"jefe": "SUPERVISOR"}, p.RoleAliases)

	empty, err := ParsePolicy(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Tenure)

	_, err = ParsePolicy([]byte("tenure_bands: []\n"))
	require.Error(t, err)

	_, err = ParsePolicy([]byte("role_aliases:\n  jefe: \"\"\n"))
	require.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Nil(t, p.Tenure)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenure:\n  - {years: 1, days: 6}\n"), 0o600))
	p, err = LoadPolicy(path)
	require.NoError(t, err)
	require.Len(t, p.Tenure, 1)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
