package tenant

import "fmt"

// ContextSetting is the transaction-scoped session variable the RLS
// policies key off. It is set with set_config(..., true) so it reverts
// at transaction end and never leaks across pooled connections.
const ContextSetting = "app.current_tenant"

// tenantTables lists the per-schema table set in creation order.
// Mirrors the QUALISYS production schema owned by the application's
// migration system; update here when that shape changes.
var tenantTables = []string{"users", "projects", "test_cases", "test_executions"}

// TenantTables returns the names of the tables created in every tenant
// schema, in dependency order.
func TenantTables() []string {
	out := make([]string, len(tenantTables))
	copy(out, tenantTables)
	return out
}

// createTableStatements returns the DDL for the tenant table set. The
// schema name must already have passed ValidateIdentifier; DDL cannot
// take identifiers as bound parameters, so string composition is the
// only option.
func createTableStatements(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE %s.users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			email TEXT NOT NULL,
			full_name TEXT,
			role TEXT NOT NULL DEFAULT 'member',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (tenant_id, email)
		)`, schema),
		fmt.Sprintf(`CREATE TABLE %s.projects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			created_by UUID REFERENCES %s.users(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, schema, schema),
		fmt.Sprintf(`CREATE TABLE %s.test_cases (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			project_id UUID NOT NULL REFERENCES %s.projects(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT,
			steps JSONB NOT NULL DEFAULT '[]'::jsonb,
			priority TEXT NOT NULL DEFAULT 'medium',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, schema, schema),
		fmt.Sprintf(`CREATE TABLE %s.test_executions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			test_case_id UUID NOT NULL REFERENCES %s.test_cases(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			executed_by UUID REFERENCES %s.users(id) ON DELETE SET NULL,
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			duration_ms INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, schema, schema, schema),
	}
}

// rlsStatements returns the DDL enabling forced row-level security on
// one table plus its single tenant-isolation policy. FORCE matters:
// without it the schema owner bypasses RLS entirely and tests would pass
// against a policy set that production never exercises.
func rlsStatements(schema, table string) []string {
	predicate := fmt.Sprintf("tenant_id = current_setting('%s', true)", ContextSetting)
	return []string{
		fmt.Sprintf("ALTER TABLE %s.%s ENABLE ROW LEVEL SECURITY", schema, table),
		fmt.Sprintf("ALTER TABLE %s.%s FORCE ROW LEVEL SECURITY", schema, table),
		fmt.Sprintf("CREATE POLICY tenant_isolation ON %s.%s USING (%s) WITH CHECK (%s)",
			schema, table, predicate, predicate),
	}
}
