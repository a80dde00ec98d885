package backend

import (
	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// ViewBackend matches records by the name of the view serving the path,
// resolved through the environment's ViewResolver. Resolution failure
// matches the empty view name, so records keyed on "" act as a catch-all.
type ViewBackend struct {
	base
}

// KeyFields returns the single _view key column.
func (b *ViewBackend) KeyFields() []*schema.FieldSpec {
	return []*schema.FieldSpec{
		{Name: "_view", Kind: schema.KindString, Editable: true},
	}
}

// BuildSchema derives the view record schema for a definition.
func (b *ViewBackend) BuildSchema(def *schema.Definition, opts schema.Options) (*schema.RecordSchema, error) {
	return b.buildSchema(def, b.KeyFields(), opts)
}

// MatchConditions resolves the target path to a view name. Without a path
// or a resolver the backend matches the empty view name, mirroring a
// failed resolution.
func (b *ViewBackend) MatchConditions(t Target, env Env, rc *resolve.Context) (map[string]any, bool) {
	if t.Path == "" && t.Object == nil {
		return nil, false
	}
	viewName := ""
	if t.Path != "" && env.Views != nil {
		viewName = env.Views.ResolveToName(t.Path)
	}
	return map[string]any{"_view": viewName}, true
}

// PrepareRecord exposes the matched view name to populate-from callables.
func (b *ViewBackend) PrepareRecord(rec *schema.Record, t Target, rc *resolve.Context) {
	rec.ViewContext = rc.ViewContext
	rec.PopulateKwargs["view_name"] = rec.StoredString("_view")
}
