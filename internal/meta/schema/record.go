package schema

import (
	"database/sql"
	"fmt"
	"strings"
)

// Record is one stored metadata row matched for a target, together with the
// per-resolution state a backend attaches after matching: the linked content
// object (if any), the ambient view context and the populate-from kwargs.
type Record struct {
	Schema *RecordSchema

	// Values holds the raw column values keyed by column name, including
	// key fields, axis fields and user fields.
	Values map[string]any

	// ContentObject is the linked domain object for modelinstance and model
	// matches, used as template-substitution context.
	ContentObject any

	// ViewContext is the ambient rendering context for template
	// substitution.
	ViewContext map[string]any

	// PopulateKwargs carries the backend-specific kwargs handed to
	// PopulateFunc fallbacks.
	PopulateKwargs map[string]any
}

// NewRecord creates a record for the given schema.
func NewRecord(rs *RecordSchema) *Record {
	return &Record{
		Schema:         rs,
		Values:         make(map[string]any),
		PopulateKwargs: make(map[string]any),
	}
}

// Stored returns the stored value for a column, normalizing driver types:
// []byte becomes string, sql.Null* values are unwrapped, SQL NULL becomes
// nil.
func (r *Record) Stored(name string) any {
	v, ok := r.Values[name]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	case sql.NullString:
		if !t.Valid {
			return nil
		}
		return t.String
	case sql.NullInt64:
		if !t.Valid {
			return nil
		}
		return t.Int64
	case sql.NullBool:
		if !t.Valid {
			return nil
		}
		return t.Bool
	}
	return v
}

// StoredString returns the stored value for a column as a string, or ""
// when the column is absent or NULL.
func (r *Record) StoredString(name string) string {
	v := r.Stored(name)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// IsEmptyValue reports whether a stored value counts as "absent" for
// resolution purposes: nil, empty string, or blank string.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []byte:
		return strings.TrimSpace(string(t)) == ""
	case bool:
		return !t
	}
	return false
}
