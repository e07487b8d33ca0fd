package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Entry is one registry row describing a provisioned test tenant.
type Entry struct {
	TenantID   string    `db:"tenant_id"`
	SchemaName string    `db:"schema_name"`
	CreatedAt  time.Time `db:"created_at"`
}

// Registry records provisioned tenants in the shared tenantkit.tenants
// table so an operator can find and drop schemas leaked by interrupted
// runs. The test fixtures do not depend on it; a tenant is fully
// functional without a registry row.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry creates a registry backed by the given pool. The registry
// table must have been created via database.Bootstrap.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

// Record upserts a registry row for a tenant.
func (r *Registry) Record(ctx context.Context, t *Tenant) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenantkit.tenants (tenant_id, schema_name)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id) DO UPDATE SET schema_name = EXCLUDED.schema_name
	`, t.ID, t.SchemaName)
	if err != nil {
		return fmt.Errorf("failed to record tenant %s: %w", t.ID, err)
	}
	return nil
}

// Remove deletes a tenant's registry row. Removing an unknown tenant is
// a no-op, matching the idempotence of cleanup itself.
func (r *Registry) Remove(ctx context.Context, tenantID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM tenantkit.tenants WHERE tenant_id = $1", tenantID)
	if err != nil {
		return fmt.Errorf("failed to remove tenant %s from registry: %w", tenantID, err)
	}
	return nil
}

// Get returns the registry entry for a tenant id.
func (r *Registry) Get(ctx context.Context, tenantID string) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, schema_name, created_at
		FROM tenantkit.tenants
		WHERE tenant_id = $1
	`, tenantID).Scan(&e.TenantID, &e.SchemaName, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant %s: %w", tenantID, err)
	}
	return &e, nil
}

// List returns all registered tenants, oldest first.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	return r.list(ctx, `
		SELECT tenant_id, schema_name, created_at
		FROM tenantkit.tenants
		ORDER BY created_at
	`)
}

// ListStale returns registered tenants older than the given age.
func (r *Registry) ListStale(ctx context.Context, olderThan time.Duration) ([]Entry, error) {
	return r.list(ctx, `
		SELECT tenant_id, schema_name, created_at
		FROM tenantkit.tenants
		WHERE created_at < now() - $1::interval
		ORDER BY created_at
	`, fmt.Sprintf("%d seconds", int64(olderThan.Seconds())))
}

func (r *Registry) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TenantID, &e.SchemaName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListOrphanSchemas returns tenant schemas present in the catalog but
// missing from the registry - usually the remains of runs that died
// before their provisioning bookkeeping, or of tenants provisioned
// without a registry at all.
func (r *Registry) ListOrphanSchemas(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name LIKE 'tenant\_test\_%' ESCAPE '\'
		  AND schema_name NOT IN (SELECT schema_name FROM tenantkit.tenants)
		ORDER BY schema_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog for orphan schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// Sweep drops every registered tenant older than the given age and
// deregisters it. Failures on individual tenants are logged and skipped
// so one wedged schema does not block the rest of the sweep. Returns the
// number of tenants dropped.
func (r *Registry) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := r.ListStale(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	dropped := 0
	for _, e := range stale {
		if err := CleanupTenant(ctx, r.pool, e.TenantID); err != nil {
			log.Warn().Err(err).
				Str("tenant_id", e.TenantID).
				Str("schema", e.SchemaName).
				Msg("Failed to drop stale tenant, skipping")
			continue
		}
		if err := r.Remove(ctx, e.TenantID); err != nil {
			log.Warn().Err(err).Str("tenant_id", e.TenantID).Msg("Failed to deregister tenant")
			continue
		}
		dropped++
	}

	if dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Stale tenant schemas swept")
	}
	return dropped, nil
}
