package tenant

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/qualisys/tenantkit/config"
	"github.com/qualisys/tenantkit/database"
)

// testPool opens a pool against the database named by
// TENANTKIT_DATABASE_URL, skipping the test when it is unset so unit
// test runs stay database-free.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TENANTKIT_DATABASE_URL")
	if url == "" {
		t.Skip("TENANTKIT_DATABASE_URL not set, skipping integration test")
	}

	pool, err := database.NewPool(context.Background(), config.DatabaseConfig{
		URL:            url,
		MaxConnections: 10,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// provisionTenant creates a tenant and registers its teardown with the
// test, so failed assertions never leak schemas.
func provisionTenant(t *testing.T, pool *pgxpool.Pool) *Tenant {
	t.Helper()

	tn, err := CreateTenant(context.Background(), pool)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, tn.Cleanup(context.Background()))
	})

	return tn
}
