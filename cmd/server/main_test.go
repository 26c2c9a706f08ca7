package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/config"
	"hr-approvals/internal/db"
	"hr-approvals/internal/db/dbstore"
)

func TestDefaultConfigOpensSQLiteStore(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "DATABASE_URL", "ENV"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "hr_approvals.sqlite"))

	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	require.Equal(t, config.DriverSQLite, cfg.DBDriver)

	opts := storeOptions(cfg)
	assert.Empty(t, opts.PostgresDSN)

	pools, err := db.Open(t.Context(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pools.Close() })
	assert.Equal(t, dbstore.DialectSQLite, pools.Dialect)

	v, err := db.MigrationVersion(pools.Write, pools.Dialect)
	require.NoError(t, err)
	assert.Positive(t, v)
}

func TestStoreOptions(t *testing.T) {
	lite := storeOptions(&config.Config{DBDriver: config.DriverSQLite, DBPath: "hr.sqlite", DBMaxConns: 6})
	assert.Equal(t, db.Options{SQLitePath: "hr.sqlite", MaxConns: 6}, lite)

	pg := storeOptions(&config.Config{DBDriver: config.DriverPostgres, DatabaseURL: "postgres://hr@db/approvals", DBPath: "ignored.sqlite"})
	assert.Equal(t, "postgres://hr@db/approvals", pg.PostgresDSN)
}

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		want       string
	}{
		{name: "default api port", listenAddr: ":8080", want: "localhost:8080"},
		{name: "hr gateway host", listenAddr: "hr-api.internal:8443", want: "hr-api.internal:8443"},
		{name: "all interfaces", listenAddr: "0.0.0.0:9000", want: "localhost:9000"},
		{name: "all ipv6 interfaces", listenAddr: "[::]:9000", want: "localhost:9000"},
		{name: "ipv6 loopback kept", listenAddr: "[::1]:8080", want: "[::1]:8080"},
		{name: "padded from env file", listenAddr: " 10.0.0.5:8080 \n", want: "10.0.0.5:8080"},
		{name: "unset listen addr", listenAddr: "", want: "localhost:8080"},
		{name: "no port", listenAddr: "approvals", want: "approvals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, curlHostForListenAddr(tt.listenAddr))
		})
	}
}
