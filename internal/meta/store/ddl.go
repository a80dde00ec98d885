package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/seometa/seometa/internal/meta/schema"
)

// CreateTableSQL generates the CREATE TABLE statement for a record schema,
// including the composite UNIQUE constraints derived from the backend's
// unique-together tuples under the active options.
func (s *Store) CreateTableSQL(rs *schema.RecordSchema) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", rs.TableName)
	if s.dialect.Name() == "postgres" {
		b.WriteString("    id BIGSERIAL PRIMARY KEY")
	} else {
		b.WriteString("    id INTEGER PRIMARY KEY AUTOINCREMENT")
	}

	for _, col := range rs.Columns() {
		kind, _ := rs.FieldKind(col)
		fmt.Fprintf(&b, ",\n    %s %s", col, s.dialect.ColumnType(kind))
		if col == schema.ColAllSubdomains {
			b.WriteString(" NOT NULL DEFAULT FALSE")
		}
	}

	for i, tuple := range rs.Unique {
		fmt.Fprintf(&b, ",\n    CONSTRAINT %s_uniq_%d UNIQUE (%s)",
			rs.TableName, i, strings.Join(tuple, ", "))
	}

	b.WriteString("\n);")
	return b.String()
}

// CreateIndexSQL generates index statements for the axis columns, which
// every scoped query filters on.
func (s *Store) CreateIndexSQL(rs *schema.RecordSchema) []string {
	var stmts []string
	add := func(col string) {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s);",
			rs.TableName, strings.TrimPrefix(col, "_"), rs.TableName, col))
	}
	if rs.HasLanguage {
		add(schema.ColLanguage)
	}
	if rs.HasSubdomain {
		add(schema.ColSubdomain)
	}
	return stmts
}

// Migrate creates the table and indexes for every given record schema.
func (s *Store) Migrate(ctx context.Context, schemas []*schema.RecordSchema) error {
	for _, rs := range schemas {
		if _, err := s.db.ExecContext(ctx, s.CreateTableSQL(rs)); err != nil {
			return fmt.Errorf("creating table %s: %w", rs.TableName, ConvertDBError(err))
		}
		for _, stmt := range s.CreateIndexSQL(rs) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("indexing table %s: %w", rs.TableName, ConvertDBError(err))
			}
		}
	}
	return nil
}
