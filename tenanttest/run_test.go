package tenanttest_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualisys/tenantkit/tenant"
	"github.com/qualisys/tenantkit/tenanttest"
)

// verifyPool opens an independent pool for asserting on database state
// after a Run invocation has released all of its own resources.
func verifyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TENANTKIT_DATABASE_URL")
	if url == "" {
		t.Skip("TENANTKIT_DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRun_ProvisionsAndTearsDown(t *testing.T) {
	pool := verifyPool(t)

	var schemaName string
	tenanttest.Run(t, func(ctx context.Context, tc *tenanttest.Context) {
		schemaName = tc.SchemaName()

		table, err := tc.Table("users")
		require.NoError(t, err)

		_, err = tc.Tx.Exec(ctx, fmt.Sprintf(
			"INSERT INTO %s (tenant_id, email) VALUES ($1, $2)", table),
			tc.TenantID(), "runner@example.test")
		require.NoError(t, err)

		var count int
		require.NoError(t, tc.Tx.QueryRow(ctx,
			fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&count))
		assert.Equal(t, 1, count)
	})

	require.NotEmpty(t, schemaName)

	exists, err := tenant.SchemaExists(context.Background(), pool, schemaName)
	require.NoError(t, err)
	assert.False(t, exists, "schema must be dropped after Run returns")
}

func TestRun_PanicStillReleasesResources(t *testing.T) {
	pool := verifyPool(t)

	var schemaName string
	func() {
		defer func() {
			require.NotNil(t, recover(), "the body's panic must propagate")
		}()
		tenanttest.Run(t, func(ctx context.Context, tc *tenanttest.Context) {
			schemaName = tc.SchemaName()
			panic("test body exploded")
		})
	}()

	require.NotEmpty(t, schemaName)

	exists, err := tenant.SchemaExists(context.Background(), pool, schemaName)
	require.NoError(t, err)
	assert.False(t, exists, "schema must be dropped even when the body panics")
}

func TestRun_IndependentTenantsPerInvocation(t *testing.T) {
	verifyPool(t) // env guard

	schemas := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		tenanttest.Run(t, func(ctx context.Context, tc *tenanttest.Context) {
			schemas[tc.SchemaName()] = struct{}{}
		})
	}
	assert.Len(t, schemas, 3)
}
