package backend

import (
	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// ModelInstanceBackend matches records linked to exactly one model
// instance, either by content type and object id when the target object is
// known, or by the record's denormalized path otherwise. After a match it
// records the content type in the resolution context so the model backend
// can fall back to type-wide metadata.
type ModelInstanceBackend struct {
	base
}

// KeyFields returns the content-type/object-id pair plus the denormalized
// _path column kept in sync with the linked object's URL.
func (b *ModelInstanceBackend) KeyFields() []*schema.FieldSpec {
	return []*schema.FieldSpec{
		{Name: "_path", Kind: schema.KindString},
		{Name: "_content_type", Kind: schema.KindString, Editable: true},
		{Name: "_object_id", Kind: schema.KindInt, Editable: true},
	}
}

// BuildSchema derives the modelinstance record schema for a definition.
func (b *ModelInstanceBackend) BuildSchema(def *schema.Definition, opts schema.Options) (*schema.RecordSchema, error) {
	return b.buildSchema(def, b.KeyFields(), opts)
}

// MatchConditions matches by object identity when the target carries an
// identifiable object, and by canonicalized path otherwise.
func (b *ModelInstanceBackend) MatchConditions(t Target, env Env, rc *resolve.Context) (map[string]any, bool) {
	if t.Object != nil {
		if id, ok := schema.ObjectID(t.Object); ok {
			return map[string]any{
				"_content_type": schema.ContentTypeOf(t.Object),
				"_object_id":    id,
			}, true
		}
	}
	if t.Path != "" {
		return map[string]any{"_path": t.Path}, true
	}
	return nil, false
}

// PrepareRecord threads the matched content type and record into the
// resolution context for the model backend, and hands the content object to
// populate-from callables and template substitution.
func (b *ModelInstanceBackend) PrepareRecord(rec *schema.Record, t Target, rc *resolve.Context) {
	rec.ViewContext = rc.ViewContext
	rec.ContentObject = t.Object
	if rec.ContentObject == nil {
		rec.ContentObject = rc.ViewObject()
	}
	rec.PopulateKwargs["model_instance"] = rec.ContentObject

	rc.ContentType = rec.StoredString("_content_type")
	if rc.ContentType == "" && rec.ContentObject != nil {
		rc.ContentType = schema.ContentTypeOf(rec.ContentObject)
	}
	rc.ModelInstance = rec
}

// DerivePath returns the _path value for a record linked to obj: the
// object's canonical URL when it exposes one. The second return is false
// when the object has no URL and the stored path should be left untouched.
func (b *ModelInstanceBackend) DerivePath(obj any, env Env) (string, bool) {
	loc, ok := obj.(schema.Locatable)
	if !ok {
		return "", false
	}
	return CanonicalizePath(loc.AbsoluteURL(), env.AppendSlash), true
}
