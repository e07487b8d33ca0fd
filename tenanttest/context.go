// Package tenanttest binds the tenant provisioning engine to Go test
// lifecycles: a testify suite with per-test provision/rollback/drop
// hooks, and a standalone per-test wrapper for tests that do not use
// suites. Both styles are safe under go test parallelism across
// packages and processes; they share no process-wide state.
package tenanttest

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualisys/tenantkit/tenant"
)

// Context is the bundle handed to a test body: the pool, one exclusively
// leased transaction already bound to the tenant's context, and the
// tenant itself. It is owned by exactly one running test and must not
// outlive it.
type Context struct {
	Pool   *pgxpool.Pool
	Tx     pgx.Tx
	Tenant *tenant.Tenant
}

// TenantID returns the active tenant's id.
func (c *Context) TenantID() string {
	return c.Tenant.ID
}

// SchemaName returns the active tenant's schema name.
func (c *Context) SchemaName() string {
	return c.Tenant.SchemaName
}

// Table returns the schema-qualified name of one of the tenant's tables.
func (c *Context) Table(name string) (string, error) {
	return c.Tenant.Table(name)
}
