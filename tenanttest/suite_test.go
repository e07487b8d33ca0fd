package tenanttest_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/qualisys/tenantkit/tenant"
	"github.com/qualisys/tenantkit/tenanttest"
)

// FixtureSuite exercises the suite-level hook bundle the way a consumer
// test package would.
type FixtureSuite struct {
	tenanttest.Suite

	seenSchemas map[string]struct{}
}

func TestFixtureSuite(t *testing.T) {
	if os.Getenv("TENANTKIT_DATABASE_URL") == "" {
		t.Skip("TENANTKIT_DATABASE_URL not set, skipping integration test")
	}
	suite.Run(t, &FixtureSuite{seenSchemas: make(map[string]struct{})})
}

func (s *FixtureSuite) TestContextIsBound() {
	tc := s.Ctx()

	got, err := tenant.RequireContext(context.Background(), tc.Tx)
	s.Require().NoError(err)
	s.Equal(tc.TenantID(), got)
}

func (s *FixtureSuite) TestSeedAndQuery() {
	tc := s.Ctx()
	ctx := context.Background()

	seed, err := tenant.SeedTenant(ctx, tc.Tx, tc.Tenant)
	s.Require().NoError(err)
	s.NotZero(seed.UserID)
	s.NotZero(seed.ProjectID)

	table, err := tc.Table("projects")
	s.Require().NoError(err)

	var name string
	err = tc.Tx.QueryRow(ctx, fmt.Sprintf("SELECT name FROM %s WHERE id = $1", table), seed.ProjectID).Scan(&name)
	s.Require().NoError(err)
	s.Equal("Seed Project", name)
}

// Each test gets a fresh tenant: the users table is always empty at test
// start, and no schema name repeats within the suite.
func (s *FixtureSuite) TestFreshTenantA() {
	s.assertFreshTenant()
}

func (s *FixtureSuite) TestFreshTenantB() {
	s.assertFreshTenant()
}

func (s *FixtureSuite) assertFreshTenant() {
	tc := s.Ctx()

	_, dup := s.seenSchemas[tc.SchemaName()]
	s.False(dup, "schema %s was reused across tests", tc.SchemaName())
	s.seenSchemas[tc.SchemaName()] = struct{}{}

	table, err := tc.Table("users")
	s.Require().NoError(err)

	var count int
	s.Require().NoError(tc.Tx.QueryRow(context.Background(),
		fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&count))
	s.Zero(count, "a freshly provisioned tenant must start empty")
}
