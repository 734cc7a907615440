package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// dialect captures the per-driver differences of the schema and inserts.
type dialect struct {
	schema []string
	// returning is set when inserts read the new id via RETURNING instead of
	// LastInsertId (lib/pq does not implement the latter).
	returning bool
}

var dialects = map[string]dialect{
	"sqlite": {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				text TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'completed')),
				is_edited_by_admin BOOLEAN NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS admins (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				password TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
		},
	},
	"postgres": {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id SERIAL PRIMARY KEY,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				text TEXT NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'completed')),
				is_edited_by_admin BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS admins (
				id SERIAL PRIMARY KEY,
				username VARCHAR(100) UNIQUE NOT NULL,
				password TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`,
		},
		returning: true,
	},
	"mysql": {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id BIGINT PRIMARY KEY AUTO_INCREMENT,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				text TEXT NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'pending',
				is_edited_by_admin BOOLEAN NOT NULL DEFAULT FALSE,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS admins (
				id BIGINT PRIMARY KEY AUTO_INCREMENT,
				username VARCHAR(100) UNIQUE NOT NULL,
				password VARCHAR(255) NOT NULL,
				created_at DATETIME(6) NOT NULL
			)`,
		},
	},
}

// Store wraps the database connection shared by the repositories.
type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// Open connects to the database for the given driver (sqlite, postgres or
// mysql) and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == "mysql" {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer; serialize access through one connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Successfully connected to the %s database!", driver)
	return &Store{db: db, dialect: d}, nil
}

// mysqlDSN forces the options the store relies on: time columns scan into
// time.Time, and UPDATE reports matched rather than changed rows.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Migrate ensures the tasks and admins tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// insert runs an INSERT and returns the generated id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.returning {
		var id int64
		if err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
