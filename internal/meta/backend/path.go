package backend

import (
	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// PathBackend matches records by exact canonicalized path.
type PathBackend struct {
	base
}

// KeyFields returns the single _path key column.
func (b *PathBackend) KeyFields() []*schema.FieldSpec {
	return []*schema.FieldSpec{
		{Name: "_path", Kind: schema.KindString, Editable: true},
	}
}

// BuildSchema derives the path record schema for a definition.
func (b *PathBackend) BuildSchema(def *schema.Definition, opts schema.Options) (*schema.RecordSchema, error) {
	return b.buildSchema(def, b.KeyFields(), opts)
}

// MatchConditions matches on the canonicalized path. Targets without a path
// are skipped.
func (b *PathBackend) MatchConditions(t Target, env Env, rc *resolve.Context) (map[string]any, bool) {
	if t.Path == "" {
		return nil, false
	}
	return map[string]any{"_path": t.Path}, true
}

// PrepareRecord exposes the matched path to populate-from callables.
func (b *PathBackend) PrepareRecord(rec *schema.Record, t Target, rc *resolve.Context) {
	rec.ViewContext = rc.ViewContext
	rec.PopulateKwargs["path"] = rec.StoredString("_path")
}
