package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Run applies the embedded schema migrations for the connected driver.
// PostgreSQL migrations run over a dedicated connection opened from dsn;
// SQLite reuses db so in-memory databases see the schema.
func Run(db *sqlx.DB, dsn string) error {
	var (
		dir      string
		dbDriver database.Driver
		closeAll bool
		err      error
	)
	switch db.DriverName() {
	case "sqlite":
		dir = "sql/sqlite"
		dbDriver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case "pgx":
		dir = "sql/postgres"
		var sqlDB *sql.DB
		sqlDB, err = sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("open sql db: %w", err)
		}
		closeAll = true
		dbDriver, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
		if err != nil {
			sqlDB.Close()
		}
	default:
		return fmt.Errorf("migrations: unsupported driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("init db driver: %w", err)
	}

	srcDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("init iofs: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, db.DriverName(), dbDriver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if closeAll {
		defer m.Close()
	} else {
		// m.Close would also close the shared *sql.DB.
		defer srcDriver.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
