package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-rating/db"
)

// NewMigrator builds a migrator over the embedded migrations that holds one
// connection checked out of conn. Closing the migrator returns that connection
// to the pool and leaves conn open.
func NewMigrator(ctx context.Context, conn *sqlx.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(db.Migrations, db.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	sqlConn, err := conn.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire migration connection: %w", err)
	}

	driver, err := migratepg.WithConnection(ctx, sqlConn, &migratepg.Config{})
	if err != nil {
		_ = sqlConn.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// NewMigratorFromURL builds a migrator that owns its own connection.
func NewMigratorFromURL(dbURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(db.Migrations, db.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending migration and returns the resulting schema
// version. An up-to-date schema is not an error.
func Migrate(ctx context.Context, conn *sqlx.DB) (version uint, err error) {
	m, err := NewMigrator(ctx, conn)
	if err != nil {
		return 0, err
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if closeErr := errors.Join(sourceErr, dbErr); err == nil && closeErr != nil {
			err = fmt.Errorf("close migrator: %w", closeErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
