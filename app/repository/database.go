package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/vibast-solutions/ms-go-onboarding/db/migrations"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var ErrNoChange = errors.New("no migration changes")

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the configured database and verifies it is reachable.
func Open(ctx context.Context, driver, dsn string, pool PoolOptions) (*sql.DB, error) {
	dsn, err := normalizeDSN(driver, dsn, false)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY and keeps in-memory databases shared.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func normalizeDSN(driver, dsn string, multiStatements bool) (string, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := mysqlDriver.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// Updates that change nothing still report the matched row.
		cfg.ClientFoundRows = true
		if multiStatements {
			cfg.MultiStatements = true
		}
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if strings.Contains(dsn, "_time_format=") {
			return dsn, nil
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "_time_format=sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate applies the embedded migrations for driver. db must already be open.
func Migrate(db *sql.DB, driver string) error {
	mig, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return err
	}
	return nil
}

// MigrateDown reverts the most recent migration.
func MigrateDown(db *sql.DB, driver string) error {
	mig, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := mig.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return err
	}
	return nil
}

// OpenForMigrations opens a connection suitable for running multi-statement
// migration files.
func OpenForMigrations(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	normalized, err := normalizeDSN(driver, dsn, true)
	if err != nil {
		return nil, err
	}
	return Open(ctx, driver, normalized, PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	sub, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("migrations for %s: %w", driver, err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	var target migratedb.Driver
	switch driver {
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, driver, target)
}
