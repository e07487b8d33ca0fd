package tenant

import "errors"

// Common errors for the tenant package
var (
	// ErrUnsafeIdentifier is returned when a schema or table name fails
	// identifier validation and must not be interpolated into SQL
	ErrUnsafeIdentifier = errors.New("unsafe SQL identifier")

	// ErrNoTenantContext is returned when a tenant-scoped operation runs
	// on a transaction with no tenant context set. This signals a logic
	// bug in the caller, not a data condition.
	ErrNoTenantContext = errors.New("no tenant context set")

	// ErrSchemaStillExists is returned when a tenant schema survives its
	// own teardown. Silent leakage would corrupt later runs' assumptions
	// about a clean database, so this is never swallowed.
	ErrSchemaStillExists = errors.New("tenant schema still exists after drop")

	// ErrEmptyTenantID is returned when an operation receives an empty tenant id
	ErrEmptyTenantID = errors.New("tenant id cannot be empty")

	// ErrTenantNotFound is returned when a registry lookup finds no tenant
	ErrTenantNotFound = errors.New("tenant not found")
)
