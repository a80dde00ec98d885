package schema

import (
	"fmt"
)

// Axis column names appended to backend uniqueness tuples and record
// schemas when the corresponding Options axis is enabled.
const (
	ColSite          = "_site"
	ColLanguage      = "_language"
	ColSubdomain     = "_subdomain"
	ColAllSubdomains = "_all_subdomains"
)

// RecordSchema is the derived shape of a stored metadata table for one
// (definition, backend, options) combination: key fields, optional axis
// fields, user fields and the composite uniqueness constraint.
type RecordSchema struct {
	Definition *Definition
	Backend    string
	TableName  string

	// KeyFields are the backend-specific columns that identify the target.
	KeyFields []*FieldSpec

	HasSite      bool
	HasLanguage  bool
	HasSubdomain bool

	// Unique holds the composite uniqueness tuples, with axis columns
	// already folded in per the options the schema was built under.
	Unique [][]string
}

// UserFields returns the definition's declared fields.
func (rs *RecordSchema) UserFields() []*FieldSpec {
	return rs.Definition.Fields()
}

// Columns returns every column of the record table in a stable order:
// key fields, axis fields, then user fields.
func (rs *RecordSchema) Columns() []string {
	var cols []string
	for _, f := range rs.KeyFields {
		cols = append(cols, f.Name)
	}
	if rs.HasSite {
		cols = append(cols, ColSite)
	}
	if rs.HasLanguage {
		cols = append(cols, ColLanguage)
	}
	if rs.HasSubdomain {
		cols = append(cols, ColSubdomain, ColAllSubdomains)
	}
	for _, f := range rs.Definition.Fields() {
		cols = append(cols, f.Name)
	}
	return cols
}

// FieldKind returns the kind of a column for DDL generation, covering key,
// axis and user columns.
func (rs *RecordSchema) FieldKind(name string) (Kind, bool) {
	for _, f := range rs.KeyFields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	switch name {
	case ColSite:
		return KindInt, true
	case ColLanguage, ColSubdomain:
		return KindString, true
	case ColAllSubdomains:
		return KindBool, true
	}
	if f, ok := rs.Definition.Field(name); ok {
		return f.Kind, true
	}
	return 0, false
}

// FoldAxes appends the axis columns enabled in opts to each uniqueness
// tuple. This is how the site, language and subdomain axes become part of
// every backend's composite constraint without backends knowing about each
// other.
func FoldAxes(tuples [][]string, opts Options) [][]string {
	out := make([][]string, 0, len(tuples))
	for _, tuple := range tuples {
		folded := make([]string, len(tuple), len(tuple)+3)
		copy(folded, tuple)
		if opts.UseSites {
			folded = append(folded, ColSite)
		}
		if opts.UseI18n {
			folded = append(folded, ColLanguage)
		}
		if opts.UseSubdomains {
			folded = append(folded, ColSubdomain)
		}
		out = append(out, folded)
	}
	return out
}

// Build derives the record schema for a backend given its key fields and
// uniqueness tuples. The tuples are expected to already carry the axis
// columns (see FoldAxes); Build stores them as given.
func Build(def *Definition, backendName string, keys []*FieldSpec, uniqueTogether [][]string, opts Options) (*RecordSchema, error) {
	if def == nil {
		return nil, fmt.Errorf("definition is required")
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("backend %s declares no key fields", backendName)
	}

	return &RecordSchema{
		Definition:   def,
		Backend:      backendName,
		TableName:    ToSnakeCase(def.Name) + "_" + backendName,
		KeyFields:    keys,
		HasSite:      opts.UseSites,
		HasLanguage:  opts.UseI18n,
		HasSubdomain: opts.UseSubdomains,
		Unique:       uniqueTogether,
	}, nil
}
