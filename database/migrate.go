package database

import (
	"embed"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Bootstrap applies the embedded migrations that create the shared
// tenantkit registry schema. It is safe to call repeatedly; applied
// versions are skipped.
//
// Tenant schemas themselves are never created by migrations - they are
// provisioned per test by the tenant package. Bootstrap only sets up the
// bookkeeping tables the CLI uses to sweep leaked schemas.
func Bootstrap(databaseURL string) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	connStr, err := migrateURL(databaseURL)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connStr)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Debug().AnErr("srcErr", srcErr).AnErr("dbErr", dbErr).Msg("Migration close returned errors")
		}
	}()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run registry migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		log.Debug().Msg("Registry schema already up to date")
	} else {
		log.Info().Msg("Registry migrations applied")
	}

	return nil
}

// migrateURL rewrites a postgres:// connection URL to the pgx5 scheme
// expected by the golang-migrate pgx/v5 driver, with the migrations
// version table kept inside the tenantkit schema.
func migrateURL(databaseURL string) (string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	parsed.Scheme = "pgx5"
	q := parsed.Query()
	// The version table stays in the default schema: migration 001 is what
	// creates the tenantkit schema, so the table cannot live inside it.
	q.Set("x-migrations-table", "tenantkit_schema_migrations")
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}
