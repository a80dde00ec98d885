package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/seometa/seometa/internal/meta/schema"
)

// Store reads and writes metadata records for one database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a store over an open database handle.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for connection-pool tuning.
func (s *Store) DB() *sql.DB { return s.db }

// Params is the visibility scope of a query: which site, language and
// subdomain the requester is in. Fields for disabled axes are ignored
// because the corresponding columns do not exist.
type Params struct {
	// Site is the requested site id. Records with a NULL _site are
	// visible for every site.
	Site int64

	// Language filters records to one stored language when non-empty.
	Language string

	// Subdomain, when non-nil, keeps records whose _subdomain matches or
	// whose _all_subdomains flag is set, ordering exact matches first.
	Subdomain *string
}

// Fetch returns the records matching the backend key conditions within the
// visibility scope, in tie-break order: subdomain-exact records before
// all-subdomain records.
func (s *Store) Fetch(ctx context.Context, rs *schema.RecordSchema, conds map[string]any, p Params) ([]*schema.Record, error) {
	var where []string
	var args []any
	n := 0

	next := func() string {
		n++
		return s.dialect.Placeholder(n)
	}

	// Backend key conditions, in sorted order for deterministic SQL.
	keys := make([]string, 0, len(conds))
	for col := range conds {
		keys = append(keys, col)
	}
	sort.Strings(keys)
	for _, col := range keys {
		where = append(where, fmt.Sprintf("%s = %s", col, next()))
		args = append(args, conds[col])
	}

	if rs.HasSite {
		where = append(where, fmt.Sprintf("(%s IS NULL OR %s = %s)",
			schema.ColSite, schema.ColSite, next()))
		args = append(args, p.Site)
	}
	if rs.HasLanguage && p.Language != "" {
		where = append(where, fmt.Sprintf("%s = %s", schema.ColLanguage, next()))
		args = append(args, p.Language)
	}

	orderBy := ""
	if rs.HasSubdomain && p.Subdomain != nil {
		where = append(where, fmt.Sprintf("(%s = %s OR %s = TRUE)",
			schema.ColSubdomain, next(), schema.ColAllSubdomains))
		args = append(args, *p.Subdomain)
		// Specific beats general: false sorts before true.
		orderBy = " ORDER BY " + schema.ColAllSubdomains
	}

	cols := rs.Columns()
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), rs.TableName)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += orderBy

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", rs.TableName, ConvertDBError(err))
	}
	defer rows.Close()

	var records []*schema.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", rs.TableName, ConvertDBError(err))
		}
		rec := schema.NewRecord(rs)
		for i, col := range cols {
			rec.Values[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", rs.TableName, ConvertDBError(err))
	}
	return records, nil
}

// FetchOne returns the first record matching the conditions within the
// scope, or nil when none match.
func (s *Store) FetchOne(ctx context.Context, rs *schema.RecordSchema, conds map[string]any, p Params) (*schema.Record, error) {
	records, err := s.Fetch(ctx, rs, conds, p)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// SaveResult reports the outcome of a save.
type SaveResult struct {
	// Saved is false when a duplicate-key conflict discarded the row.
	// The conflict is surfaced as a result, not an error, so callers can
	// observe the silent-discard behavior instead of losing it.
	Saved bool
}

// Save inserts a metadata record row. Columns absent from values are
// stored as NULL. When swallowConflict is set, a row colliding with the
// composite uniqueness constraint is discarded and the result reports
// Saved=false with no error.
func (s *Store) Save(ctx context.Context, rs *schema.RecordSchema, values map[string]any, swallowConflict bool) (SaveResult, error) {
	var cols []string
	var placeholders []string
	var args []any
	n := 0

	for _, col := range rs.Columns() {
		v, ok := values[col]
		if !ok {
			continue
		}
		n++
		cols = append(cols, col)
		placeholders = append(placeholders, s.dialect.Placeholder(n))
		args = append(args, v)
	}
	if len(cols) == 0 {
		return SaveResult{}, fmt.Errorf("no known columns in values for %s", rs.TableName)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		rs.TableName, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if swallowConflict {
		query += s.dialect.ConflictClause()
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		err = ConvertDBError(err)
		if swallowConflict && IsUniqueViolation(err) {
			return SaveResult{Saved: false}, nil
		}
		return SaveResult{}, fmt.Errorf("saving into %s: %w", rs.TableName, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// Drivers that cannot report affected rows still saved the row.
		return SaveResult{Saved: true}, nil
	}
	return SaveResult{Saved: affected > 0}, nil
}
