package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embeddedMigrations embed.FS

type migrator struct {
	db *sqlx.DB

	logger *slog.Logger
}

func NewDatabaseMigrator(db *sqlx.DB, logger *slog.Logger) *migrator {
	return &migrator{
		db:     db,
		logger: logger,
	}
}

// Migrate brings the given postgres schema up to date
func (m *migrator) Migrate(ctx context.Context, schemaName string) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: failed to connect to db: %w", err)
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return fmt.Errorf("migrate: failed to create schema: %w", err)
	}

	_, err = conn.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return fmt.Errorf("migrate: failed to set search path: %w", err)
	}

	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		DatabaseName: DB_NAME,
		SchemaName:   schemaName,
	})
	if err != nil {
		return fmt.Errorf("migrate: failed to create postgres driver: %w", err)
	}

	return m.up(ctx, "migrations/postgres", "postgres", dbDriver)
}

// MigrateSQLite brings a sqlite database up to date
func (m *migrator) MigrateSQLite(ctx context.Context) error {
	dbDriver, err := sqlite.WithInstance(m.db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate: failed to create sqlite driver: %w", err)
	}

	return m.up(ctx, "migrations/sqlite", "sqlite", dbDriver)
}

func (m *migrator) up(ctx context.Context, path string, driverName string, dbDriver migratedb.Driver) error {
	migrationSource, err := iofs.New(embeddedMigrations, path)
	if err != nil {
		return fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err)
	}
	defer migrationSource.Close()

	migratorInstance, err := migrate.NewWithInstance("iofs", migrationSource, driverName, dbDriver)
	if err != nil {
		return fmt.Errorf("migrate: failed to create migration instance: %w", err)
	}
	// Closing the instance closes the driver, which would close the shared sqlite pool
	if driverName != "sqlite" {
		defer migratorInstance.Close()
	}

	m.logger.InfoContext(ctx, "Starting migrations...", "driver", driverName)
	if err := migratorInstance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.InfoContext(ctx, "No migrations to run.")
		} else {
			return fmt.Errorf("migrate: failed to migrate: %w", err)
		}
	}
	m.logger.InfoContext(ctx, "Migrations completed successfully.")

	return nil
}
