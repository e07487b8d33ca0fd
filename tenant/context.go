package tenant

import (
	"context"
	"fmt"
)

// SetContext binds the current transaction to a tenant. The setting is
// transaction-local (set_config with is_local = true), so it reverts
// automatically at COMMIT or ROLLBACK and can never leak to the next
// lease of a pooled connection. Calling it outside a transaction is a
// bug: set_config(..., true) is then a no-op on the session.
func SetContext(ctx context.Context, q Querier, tenantID string) error {
	if tenantID == "" {
		return ErrEmptyTenantID
	}

	if _, err := q.Exec(ctx, fmt.Sprintf("SELECT set_config('%s', $1, true)", ContextSetting), tenantID); err != nil {
		return fmt.Errorf("failed to set tenant context: %w", err)
	}
	return nil
}

// ClearContext resets the tenant context for the current transaction.
// Rarely needed - transaction end clears it implicitly - but useful for
// asserting no-context behavior mid-transaction.
func ClearContext(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, fmt.Sprintf("SELECT set_config('%s', '', true)", ContextSetting)); err != nil {
		return fmt.Errorf("failed to clear tenant context: %w", err)
	}
	return nil
}

// RequireContext returns the tenant id bound to the current transaction,
// or ErrNoTenantContext if none is set. This is defense in depth for
// application code paths; the RLS policies enforce isolation regardless
// of whether anyone calls it.
func RequireContext(ctx context.Context, q Querier) (string, error) {
	var tenantID *string
	err := q.QueryRow(ctx, fmt.Sprintf("SELECT current_setting('%s', true)", ContextSetting)).Scan(&tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to read tenant context: %w", err)
	}
	if tenantID == nil || *tenantID == "" {
		return "", ErrNoTenantContext
	}
	return *tenantID, nil
}
