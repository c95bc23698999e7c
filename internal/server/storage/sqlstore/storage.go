// Package sqlstore implements the record repositories on top of database/sql.
// SQLite (modernc.org/sqlite) and PostgreSQL (pgx stdlib) share one set of
// queries; placeholders are rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/medrecords/internal/server/storage"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

var _ storage.Store = (*Storage)(nil)

// Storage is the SQL-backed record repository.
type Storage struct {
	db      *sql.DB
	dialect Dialect
}

// New opens the database named by dsn, applies pragmas and migrations.
// postgres:// and postgresql:// DSNs select PostgreSQL, anything else is a
// SQLite path. Use ":memory:" for an in-memory database (useful for testing).
func New(ctx context.Context, dsn string) (*Storage, error) {
	dialect := DialectFromDSN(dsn)

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == DialectSQLite {
		// one writer; also keeps a :memory: database alive on a single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		pragmas := []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA foreign_keys = ON;",
			"PRAGMA busy_timeout = 5000;",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	}

	s := &Storage{db: db, dialect: dialect}

	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// NewWithDB wraps an already opened and migrated database.
func NewWithDB(db *sql.DB, dialect Dialect) *Storage {
	return &Storage{db: db, dialect: dialect}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect in use.
func (s *Storage) Dialect() Dialect {
	return s.dialect
}

func (s *Storage) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, s.dialect.migrationsDir()); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// q rewrites '?' placeholders for the active dialect.
func (s *Storage) q(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
