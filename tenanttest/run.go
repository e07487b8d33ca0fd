package tenanttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qualisys/tenantkit/config"
	"github.com/qualisys/tenantkit/database"
	"github.com/qualisys/tenantkit/tenant"
)

// Run provisions an isolated tenant and invokes fn with a ready Context:
// a private pool, an open transaction bound to the tenant, and the
// tenant itself. When fn returns - or panics - the transaction is rolled
// back, the schema is dropped and verified gone, and the pool is closed;
// a panic propagates after the resources are released.
//
// Use it for tests outside a suite:
//
//	func TestProjectQueries(t *testing.T) {
//		tenanttest.Run(t, func(ctx context.Context, tc *tenanttest.Context) {
//			table, _ := tc.Table("projects")
//			_, err := tc.Tx.Exec(ctx, "INSERT INTO "+table+" ...")
//			...
//		})
//	}
func Run(t *testing.T, fn func(ctx context.Context, tc *Context)) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err, "tenanttest.Run requires configuration; set TENANTKIT_DATABASE_URL")

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database)
	require.NoError(t, err, "failed to open test database pool")
	defer pool.Close()

	opCtx, cancel := context.WithTimeout(ctx, DefaultOpTimeout)
	defer cancel()

	tn, err := tenant.CreateTenant(opCtx, pool)
	require.NoError(t, err, "failed to provision tenant")

	// Cleanup is deferred before the transaction opens so it runs on
	// every exit path, including panics from fn.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), DefaultOpTimeout)
		defer cancel()
		if err := tn.Cleanup(cleanupCtx); err != nil {
			t.Errorf("tenant cleanup failed: %v", err)
		}
	}()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err, "failed to begin test transaction")
	// Best-effort rollback; the deferred cleanup's schema check is the
	// authoritative teardown signal.
	defer func() { _ = tx.Rollback(ctx) }()

	require.NoError(t, tenant.SetContext(ctx, tx, tn.ID), "failed to set tenant context")

	fn(ctx, &Context{Pool: pool, Tx: tx, Tenant: tn})
}
