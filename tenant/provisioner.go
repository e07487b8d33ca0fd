package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// CreateTenant provisions a fresh isolated tenant with a generated id.
func CreateTenant(ctx context.Context, pool *pgxpool.Pool) (*Tenant, error) {
	return CreateTenantWithID(ctx, pool, NewTenantID())
}

// CreateTenantWithID provisions an isolated tenant under a caller-chosen
// id: one schema, the four application tables, and a forced RLS policy
// per table, all inside a single transaction. On any failure the
// transaction is rolled back and no partial schema is committed.
//
// Concurrent invocations are safe: each call works on an independent
// schema name and contends only on the catalog locks the server already
// manages.
func CreateTenantWithID(ctx context.Context, pool *pgxpool.Pool, tenantID string) (*Tenant, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	schemaName := SchemaNameFor(tenantID)
	if err := ValidateIdentifier(schemaName); err != nil {
		return nil, fmt.Errorf("refusing to provision tenant %q: %w", tenantID, err)
	}

	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin provisioning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schemaName)); err != nil {
		return nil, fmt.Errorf("failed to create schema %s: %w", schemaName, err)
	}

	for _, stmt := range createTableStatements(schemaName) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create table in %s: %w", schemaName, err)
		}
	}

	for _, table := range tenantTables {
		for _, stmt := range rlsStatements(schemaName, table) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return nil, fmt.Errorf("failed to install RLS on %s.%s: %w", schemaName, table, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit provisioning transaction: %w", err)
	}

	log.Debug().
		Str("tenant_id", tenantID).
		Str("schema", schemaName).
		Dur("duration", time.Since(start)).
		Msg("Tenant schema provisioned")

	return &Tenant{
		ID:         tenantID,
		SchemaName: schemaName,
		cleanup: func(ctx context.Context) error {
			return CleanupTenant(ctx, pool, tenantID)
		},
	}, nil
}
