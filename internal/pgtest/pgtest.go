// Package pgtest gives repository tests a migrated Postgres. Tests skip unless
// TEST_DATABASE_URL points at a disposable database.
package pgtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/db"
)

const EnvURL = "TEST_DATABASE_URL"

// Config returns a config aimed at the test database and the repo's migrations.
func Config(t testing.TB) config.Config {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	return config.Config{DatabaseURL: url, MigrationsPath: "file://" + filepath.ToSlash(dir)}
}

// Pool migrates the test database and returns a pool closed with the test.
func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	cfg := Config(t)
	require.NoError(t, db.MigrateUp(cfg))

	pool, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// StoreHash is unique per call so tests sharing a database never collide.
func StoreHash() string {
	return "t" + uuid.NewString()[:8]
}
