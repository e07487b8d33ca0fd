package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SeedData holds the ids generated by SeedTenant.
type SeedData struct {
	UserID    uuid.UUID
	ProjectID uuid.UUID
}

// SeedTenant inserts one user and one project owned by that user into a
// freshly provisioned tenant schema. The caller's transaction must
// already carry the tenant's context; under forced RLS an insert without
// it is rejected by the database and the error is returned unchanged.
func SeedTenant(ctx context.Context, q Querier, t *Tenant) (*SeedData, error) {
	usersTable, err := t.Table("users")
	if err != nil {
		return nil, err
	}
	projectsTable, err := t.Table("projects")
	if err != nil {
		return nil, err
	}

	seed := &SeedData{}

	err = q.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (tenant_id, email, full_name, role)
		VALUES ($1, $2, $3, 'owner')
		RETURNING id
	`, usersTable), t.ID, fmt.Sprintf("owner@%s.test", t.ID), "Seed Owner").Scan(&seed.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed user: %w", err)
	}

	err = q.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (tenant_id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, projectsTable), t.ID, "Seed Project", "Initial project for test runs", seed.UserID).Scan(&seed.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed project: %w", err)
	}

	return seed, nil
}
