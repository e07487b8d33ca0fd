package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qualisys/tenantkit/config"
	"github.com/qualisys/tenantkit/database"
	"github.com/qualisys/tenantkit/tenant"
)

var sweepOlderThan time.Duration

func init() {
	sweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", time.Hour,
		"Only sweep tenants older than this age")

	rootCmd.AddCommand(bootstrapCmd, provisionCmd, listCmd, dropCmd, sweepCmd)
}

// openPool loads configuration and connects to the test database.
// A missing TENANTKIT_DATABASE_URL is fatal for every command.
func openPool(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return pool, cfg, nil
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the tenant registry schema",
	Long: `Apply the embedded migrations that create the tenantkit registry schema.

Safe to run repeatedly; already-applied migrations are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return database.Bootstrap(cfg.Database.URL)
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision [tenant-id]",
	Short: "Provision an isolated tenant schema",
	Long: `Provision a tenant schema with the full table set and RLS policies.

With no argument a fresh test tenant id is generated. The tenant is
recorded in the registry when one exists.

Examples:
  tenantctl provision
  tenantctl provision test_cafe0123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, _, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		var tn *tenant.Tenant
		if len(args) == 1 {
			tn, err = tenant.CreateTenantWithID(ctx, pool, args[0])
		} else {
			tn, err = tenant.CreateTenant(ctx, pool)
		}
		if err != nil {
			return err
		}

		if err := tenant.NewRegistry(pool).Record(ctx, tn); err != nil {
			log.Warn().Err(err).Msg("Tenant not recorded in registry (run 'tenantctl bootstrap' first)")
		}

		fmt.Printf("tenant_id: %s\nschema:    %s\n", tn.ID, tn.SchemaName)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tenants and orphan schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, _, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		reg := tenant.NewRegistry(pool)

		entries, err := reg.List(ctx)
		if err != nil {
			return err
		}
		orphans, err := reg.ListOrphanSchemas(ctx)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Tenant ID", "Schema", "Age", "Registered"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, e := range entries {
			table.Append([]string{
				e.TenantID,
				e.SchemaName,
				time.Since(e.CreatedAt).Round(time.Second).String(),
				"yes",
			})
		}
		for _, schema := range orphans {
			table.Append([]string{"-", schema, "-", "no"})
		}

		if len(entries) == 0 && len(orphans) == 0 {
			fmt.Println("No tenant schemas found")
			return nil
		}

		table.Render()
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <tenant-id>",
	Short: "Drop a tenant schema and deregister it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, _, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		tenantID := args[0]
		if err := tenant.CleanupTenant(ctx, pool, tenantID); err != nil {
			return err
		}
		if err := tenant.NewRegistry(pool).Remove(ctx, tenantID); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID).Msg("Failed to deregister tenant")
		}

		log.Info().Str("tenant_id", tenantID).Msg("Tenant dropped")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Drop stale tenant schemas leaked by interrupted runs",
	Long: `Drop every registered tenant older than --older-than and deregister it.

Individual failures are logged and skipped so one wedged schema does not
block the sweep.

Examples:
  tenantctl sweep
  tenantctl sweep --older-than 10m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, _, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		dropped, err := tenant.NewRegistry(pool).Sweep(ctx, sweepOlderThan)
		if err != nil {
			return err
		}

		fmt.Printf("Dropped %d stale tenant(s)\n", dropped)
		return nil
	},
}
