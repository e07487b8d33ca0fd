package tenant

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualisys/tenantkit/database"
)

// countUsers counts rows in a tenant's users table under whatever
// context the given querier currently carries.
func countUsers(t *testing.T, q Querier, tn *Tenant) int {
	t.Helper()

	table, err := tn.Table("users")
	require.NoError(t, err)

	var count int
	require.NoError(t, q.QueryRow(context.Background(),
		fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&count))
	return count
}

func TestIsolation_CrossTenantReadsAreEmpty(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tenantA := provisionTenant(t, pool)
	tenantB := provisionTenant(t, pool)

	// Insert a row for tenant A and commit so later transactions see it.
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, SetContext(ctx, tx, tenantA.ID))
	_, err = SeedTenant(ctx, tx, tenantA)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	// Under tenant A's context the row is visible.
	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()
	require.NoError(t, SetContext(ctx, tx, tenantA.ID))
	assert.Equal(t, 1, countUsers(t, tx, tenantA))

	// Under tenant B's context, querying A's table returns nothing.
	require.NoError(t, SetContext(ctx, tx, tenantB.ID))
	assert.Equal(t, 0, countUsers(t, tx, tenantA))

	// With no context at all, reads are empty - never globally permissive.
	require.NoError(t, ClearContext(ctx, tx))
	assert.Equal(t, 0, countUsers(t, tx, tenantA))

	// Switching back to A restores visibility.
	require.NoError(t, SetContext(ctx, tx, tenantA.ID))
	assert.Equal(t, 1, countUsers(t, tx, tenantA))
}

func TestIsolation_WriteEnforcement(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tenantA := provisionTenant(t, pool)
	tenantB := provisionTenant(t, pool)

	table, err := tenantA.Table("users")
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	require.NoError(t, SetContext(ctx, tx, tenantB.ID))

	// Inserting a row whose tenant_id differs from the active context is
	// rejected by the WITH CHECK policy.
	_, err = tx.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (tenant_id, email) VALUES ($1, $2)", table),
		tenantA.ID, "intruder@example.test")
	require.Error(t, err)
	assert.True(t, database.IsRLSViolation(err), "expected RLS policy violation, got: %v", err)
}

func TestIsolation_WriteWithoutContextRejected(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tn := provisionTenant(t, pool)

	table, err := tn.Table("users")
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (tenant_id, email) VALUES ($1, $2)", table),
		tn.ID, "noctx@example.test")
	require.Error(t, err)
	assert.True(t, database.IsRLSViolation(err), "expected RLS policy violation, got: %v", err)
}
