package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetContext_RejectsEmptyTenantID(t *testing.T) {
	err := SetContext(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyTenantID)
}

func TestContext_RoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	// No context at transaction start.
	_, err = RequireContext(ctx, tx)
	assert.ErrorIs(t, err, ErrNoTenantContext)

	require.NoError(t, SetContext(ctx, tx, "test_ctx_roundtrip"))

	got, err := RequireContext(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "test_ctx_roundtrip", got)

	// Explicit clear restores the no-context error.
	require.NoError(t, ClearContext(ctx, tx))
	_, err = RequireContext(ctx, tx)
	assert.ErrorIs(t, err, ErrNoTenantContext)
}

func TestContext_ScopedToTransaction(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, SetContext(ctx, tx, "test_ctx_scoped"))
	require.NoError(t, tx.Rollback(ctx))

	// A later transaction on the same pool must not observe the old
	// binding; set_config(..., true) reverts at transaction end.
	tx2, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx2.Rollback(ctx) }()

	_, err = RequireContext(ctx, tx2)
	assert.ErrorIs(t, err, ErrNoTenantContext)
}

func TestContext_RevertsAfterCommit(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, SetContext(ctx, tx, "test_ctx_commit"))
	require.NoError(t, tx.Commit(ctx))

	// Even COMMIT discards a transaction-local setting: the same
	// connection reads no context afterwards.
	_, err = RequireContext(ctx, conn)
	assert.ErrorIs(t, err, ErrNoTenantContext)
}
