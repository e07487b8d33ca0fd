package tenanttest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/qualisys/tenantkit/config"
	"github.com/qualisys/tenantkit/database"
	"github.com/qualisys/tenantkit/tenant"
)

// DefaultOpTimeout bounds each provisioning and cleanup call so a hung
// database round trip fails the test instead of wedging the whole run
// until the go test deadline.
const DefaultOpTimeout = 30 * time.Second

// Suite is a testify suite that provisions a fresh isolated tenant for
// every test. Embed it and run with suite.Run:
//
//	type ProjectSuite struct {
//		tenanttest.Suite
//	}
//
//	func (s *ProjectSuite) TestSomething() {
//		tc := s.Ctx()
//		// tc.Tx is open, tenant context is set
//	}
//
// Lifecycle: SetupSuite opens one shared pool (configuration is fatal if
// TENANTKIT_DATABASE_URL is unset); SetupTest provisions a tenant, begins
// a transaction and binds the tenant context; TearDownTest rolls the
// transaction back, drops the schema and clears the current context;
// TearDownSuite closes the pool.
type Suite struct {
	suite.Suite

	// Pool is shared by all tests in the suite.
	Pool *pgxpool.Pool

	current *Context
}

// SetupSuite loads configuration and opens the shared pool.
func (s *Suite) SetupSuite() {
	cfg, err := config.Load()
	s.Require().NoError(err, "tenanttest requires configuration; set TENANTKIT_DATABASE_URL")

	pool, err := database.NewPool(context.Background(), cfg.Database)
	s.Require().NoError(err, "failed to open test database pool")

	s.Pool = pool
}

// TearDownSuite closes the shared pool.
func (s *Suite) TearDownSuite() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// SetupTest provisions a fresh tenant, leases a transaction, and binds
// the tenant context to it.
func (s *Suite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultOpTimeout)
	defer cancel()

	tn, err := tenant.CreateTenant(ctx, s.Pool)
	s.Require().NoError(err, "failed to provision tenant")

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		_ = tn.Cleanup(ctx)
		s.Require().NoError(err, "failed to begin test transaction")
	}

	if err := tenant.SetContext(ctx, tx, tn.ID); err != nil {
		_ = tx.Rollback(ctx)
		_ = tn.Cleanup(ctx)
		s.Require().NoError(err, "failed to set tenant context")
	}

	s.current = &Context{Pool: s.Pool, Tx: tx, Tenant: tn}
}

// TearDownTest rolls back the test's transaction, drops the tenant
// schema, and clears the current context. Rollback errors are
// suppressed: the transaction may already be closed, and the schema
// drop verification below is the authoritative signal.
func (s *Suite) TearDownTest() {
	if s.current == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultOpTimeout)
	defer cancel()

	_ = s.current.Tx.Rollback(ctx)

	err := s.current.Tenant.Cleanup(ctx)
	s.current = nil
	s.Require().NoError(err, "tenant cleanup failed")
}

// Ctx returns the current test's context. Calling it outside a running
// test fails immediately rather than returning stale state.
func (s *Suite) Ctx() *Context {
	if s.current == nil {
		s.Require().FailNow("no active tenant context", "Ctx() called outside a running test")
	}
	return s.current
}
