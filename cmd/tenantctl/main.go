// tenantctl is an operator tool for the tenant isolation harness:
// bootstrap the registry, provision and drop tenants by hand, and sweep
// schemas leaked by interrupted test runs.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "tenantctl",
	Short: "Manage isolated test tenant schemas",
	Long: `tenantctl manages per-tenant PostgreSQL schemas used by the test harness.

Each test tenant is one schema (tenant_test_<hex>) holding the QUALISYS
table set with forced row-level security. Tests normally provision and
drop tenants themselves; tenantctl exists for operators to inspect the
test database and clean up after interrupted runs.

Configuration comes from TENANTKIT_DATABASE_URL (or a .env file).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
