package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

var (
	//go:embed schema/postgres.sql
	postgresSchema string
	//go:embed schema/sqlite.sql
	sqliteSchema string

	positionalParam = regexp.MustCompile(`\$(\d+)`)
)

// DB wraps a connection pool together with its dialect. Queries are written with
// Postgres-style $n placeholders and rebound for SQLite.
type DB struct {
	*sql.DB
	dialect Dialect
}

// New opens the database named by url and applies the schema.
// postgres:// and postgresql:// select Postgres; sqlite://<path> or sqlite3://<path> select SQLite.
func New(url string) (*DB, error) {
	dialect, dsn, err := parseURL(url)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// a single connection keeps :memory: databases shared and serialises writers
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, dialect: dialect}
	if err := db.Migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func parseURL(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "sqlite3://"):
		return DialectSQLite, strings.TrimPrefix(url, "sqlite3://"), nil
	case url == "":
		return "", "", fmt.Errorf("database url is empty")
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", url)
	}
}

// Dialect returns the backend in use
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Migrate creates the tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if db.dialect == DialectSQLite {
		schema = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// rebind rewrites $n placeholders to ?n for SQLite
func (db *DB) rebind(query string) string {
	if db.dialect != DialectSQLite {
		return query
	}
	return positionalParam.ReplaceAllString(query, "?$1")
}
