package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB spins up a disposable Postgres container, applies the
// schema and returns a connected pool. Skipped in -short mode.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("wallet_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	applySchema(t, pool)

	return pool
}

// applySchema mirrors the embedded migration. It is inlined here to avoid
// an import cycle between the migrations and postgres packages.
func applySchema(t *testing.T, pool *Pool) {
	t.Helper()

	schema := `
		CREATE TABLE IF NOT EXISTS fungible_token_metadata (
			contract_address TEXT NOT NULL,
			contract_name    TEXT NOT NULL,
			network_url      TEXT NOT NULL,
			name             TEXT NOT NULL DEFAULT '',
			symbol           TEXT NOT NULL DEFAULT '',
			decimals         INTEGER NOT NULL DEFAULT 0,
			is_transferable  BOOLEAN,
			fetched_at       BIGINT NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (contract_address, contract_name, network_url)
		);
	`

	_, err := pool.Exec(context.Background(), schema)
	require.NoError(t, err)
}
