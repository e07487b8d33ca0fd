package tenant

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// CleanupTenant drops a tenant's schema with CASCADE and verifies it is
// actually gone. The drop runs in autocommit - outside any lingering
// transaction - so it is durable immediately. Idempotent: dropping an
// already-absent schema is a no-op.
func CleanupTenant(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	if tenantID == "" {
		return ErrEmptyTenantID
	}

	schemaName := SchemaNameFor(tenantID)
	if err := ValidateIdentifier(schemaName); err != nil {
		return fmt.Errorf("refusing to drop tenant %q: %w", tenantID, err)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName)); err != nil {
		return fmt.Errorf("failed to drop schema %s: %w", schemaName, err)
	}

	exists, err := SchemaExists(ctx, pool, schemaName)
	if err != nil {
		return fmt.Errorf("failed to verify drop of schema %s: %w", schemaName, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSchemaStillExists, schemaName)
	}

	log.Debug().Str("tenant_id", tenantID).Str("schema", schemaName).Msg("Tenant schema dropped")
	return nil
}

// SchemaExists reports whether a schema is present in the catalog.
func SchemaExists(ctx context.Context, q Querier, schemaName string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
		schemaName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query information_schema.schemata: %w", err)
	}
	return exists, nil
}
