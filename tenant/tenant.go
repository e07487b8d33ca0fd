// Package tenant provisions fully isolated per-tenant PostgreSQL schemas
// for test runs: one schema per tenant, the four QUALISYS application
// tables inside it, and a forced row-level-security policy on each table
// keyed off a transaction-scoped session variable.
package tenant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaPrefix is prepended to every tenant id to form its schema name.
const SchemaPrefix = "tenant_"

// testIDPrefix marks generated ids as belonging to test tenants so they
// can never collide with production tenant ids.
const testIDPrefix = "test_"

// Querier is the subset of pgx execution methods the tenant operations
// need. It is satisfied by pgx.Tx, *pgx.Conn, and *pgxpool.Pool, so
// callers can run context and seed operations inside or outside a
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (pgx.Tx)(nil)
	_ Querier = (*pgx.Conn)(nil)
	_ Querier = (*pgxpool.Pool)(nil)
)

// Tenant is one isolated unit of test data: a tenant id, the schema
// derived from it, and the capability to tear the schema down again.
type Tenant struct {
	ID         string
	SchemaName string

	cleanupOnce sync.Once
	cleanupErr  error
	cleanup     func(ctx context.Context) error
}

// Cleanup drops the tenant's schema and verifies it is gone. The drop
// runs at most once; repeated calls return the first invocation's result.
func (t *Tenant) Cleanup(ctx context.Context) error {
	t.cleanupOnce.Do(func() {
		t.cleanupErr = t.cleanup(ctx)
	})
	return t.cleanupErr
}

// NewTenantID generates a globally unique test tenant id: "test_"
// followed by 32 lowercase hex characters (a random 128-bit value).
func NewTenantID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return testIDPrefix + raw
}

// SchemaNameFor derives the schema name for a tenant id. The mapping is
// pure and injective: no two tenant ids can share a schema.
func SchemaNameFor(tenantID string) string {
	return SchemaPrefix + tenantID
}

// Table returns the schema-qualified name of one of the tenant's tables,
// validating both parts before they are composed into SQL.
func (t *Tenant) Table(name string) (string, error) {
	if err := ValidateIdentifier(t.SchemaName); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", t.SchemaName, name), nil
}
