// Package store persists and queries metadata records over database/sql.
// It generates the per-backend table DDL (including the composite
// uniqueness constraint derived from Options), applies the site, language
// and subdomain visibility scoping, and implements the conflict-swallowing
// save used by the modelinstance backend.
package store

import (
	"fmt"
	"strconv"

	"github.com/seometa/seometa/internal/meta/schema"
)

// Dialect abstracts the SQL differences between the supported databases:
// placeholder style, column types and the insert-conflict clause.
type Dialect interface {
	// Name is the dialect identifier ("postgres" or "sqlite").
	Name() string

	// Placeholder returns the bind placeholder for the n-th parameter,
	// 1-based.
	Placeholder(n int) string

	// ColumnType maps a field kind to the dialect's column type.
	ColumnType(kind schema.Kind) string

	// ConflictClause is appended to an INSERT to discard duplicate-key
	// rows instead of failing.
	ConflictClause() string
}

// DialectFor returns the dialect for a database driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return PostgresDialect{}, nil
	case "sqlite3", "sqlite":
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// PostgresDialect targets PostgreSQL via the pgx stdlib driver.
type PostgresDialect struct{}

// Name returns "postgres".
func (PostgresDialect) Name() string { return "postgres" }

// Placeholder returns $n.
func (PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// ColumnType maps field kinds to PostgreSQL types.
func (PostgresDialect) ColumnType(kind schema.Kind) string {
	switch kind {
	case schema.KindText:
		return "TEXT"
	case schema.KindBool:
		return "BOOLEAN"
	case schema.KindInt:
		return "BIGINT"
	default:
		return "VARCHAR(255)"
	}
}

// ConflictClause returns the PostgreSQL do-nothing upsert clause.
func (PostgresDialect) ConflictClause() string { return " ON CONFLICT DO NOTHING" }

// SQLiteDialect targets SQLite via mattn/go-sqlite3.
type SQLiteDialect struct{}

// Name returns "sqlite".
func (SQLiteDialect) Name() string { return "sqlite" }

// Placeholder returns ?.
func (SQLiteDialect) Placeholder(n int) string { return "?" }

// ColumnType maps field kinds to SQLite types.
func (SQLiteDialect) ColumnType(kind schema.Kind) string {
	switch kind {
	case schema.KindText:
		return "TEXT"
	case schema.KindBool:
		return "BOOLEAN"
	case schema.KindInt:
		return "INTEGER"
	default:
		return "VARCHAR(255)"
	}
}

// ConflictClause returns the SQLite do-nothing upsert clause.
func (SQLiteDialect) ConflictClause() string { return " ON CONFLICT DO NOTHING" }
