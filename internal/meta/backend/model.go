package backend

import (
	"fmt"

	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// BackendOrderingError reports an active backend list in which the model
// backend is not preceded by modelinstance. It is raised once at
// configuration time, never during a request.
type BackendOrderingError struct {
	Backends []string
}

func (e *BackendOrderingError) Error() string {
	return fmt.Sprintf("backend %q must be preceded by %q in the active backend list %v",
		"model", "modelinstance", e.Backends)
}

// ModelBackend matches records by content type alone, serving as the
// type-wide default for every instance of a model. It depends on the
// modelinstance backend having matched first: instance-specific records
// must win, and the content type to match on usually comes from that
// earlier match via the resolution context.
type ModelBackend struct {
	base
}

// KeyFields returns the single _content_type key column.
func (b *ModelBackend) KeyFields() []*schema.FieldSpec {
	return []*schema.FieldSpec{
		{Name: "_content_type", Kind: schema.KindString, Editable: true},
	}
}

// BuildSchema derives the model record schema for a definition.
func (b *ModelBackend) BuildSchema(def *schema.Definition, opts schema.Options) (*schema.RecordSchema, error) {
	return b.buildSchema(def, b.KeyFields(), opts)
}

// MatchConditions matches on the content type threaded through the
// resolution context by the modelinstance backend, falling back to the
// view context's "object" entry and finally to the target object itself.
func (b *ModelBackend) MatchConditions(t Target, env Env, rc *resolve.Context) (map[string]any, bool) {
	contentType := rc.ContentType
	if contentType == "" {
		if obj := rc.ViewObject(); obj != nil {
			contentType = schema.ContentTypeOf(obj)
		}
	}
	if contentType == "" && t.Object != nil {
		contentType = schema.ContentTypeOf(t.Object)
	}
	if contentType == "" {
		return nil, false
	}
	return map[string]any{"_content_type": contentType}, true
}

// PrepareRecord hands the instance matched earlier in the resolution to
// template substitution, so type-wide values can still reference the
// concrete object.
func (b *ModelBackend) PrepareRecord(rec *schema.Record, t Target, rc *resolve.Context) {
	rec.ViewContext = rc.ViewContext
	if rc.ModelInstance != nil {
		rec.ContentObject = rc.ModelInstance.ContentObject
	} else if t.Object != nil {
		rec.ContentObject = t.Object
	} else {
		rec.ContentObject = rc.ViewObject()
	}
	rec.PopulateKwargs["content_type"] = rec.StoredString("_content_type")
}

// Validate fails configuration when the model backend is active without
// modelinstance before it.
func (b *ModelBackend) Validate(opts schema.Options) error {
	modelIdx := opts.BackendIndex("model")
	if modelIdx == -1 {
		return nil
	}
	instanceIdx := opts.BackendIndex("modelinstance")
	if instanceIdx == -1 || instanceIdx > modelIdx {
		return &BackendOrderingError{Backends: opts.Backends}
	}
	return nil
}
