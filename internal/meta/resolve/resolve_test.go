package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seometa/seometa/internal/meta/schema"
)

type product struct {
	ID   int64
	Name string
}

func (p *product) Tagline() string { return p.Name + " is great" }

func newTestRecord(t *testing.T, def *schema.Definition) *schema.Record {
	t.Helper()
	rs, err := schema.Build(def, "path", []*schema.FieldSpec{{Name: "_path"}}, nil, schema.Options{})
	require.NoError(t, err)
	return schema.NewRecord(rs)
}

func TestStoredValuePrecedence(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{
		Name:     "title",
		Editable: true,
		PopulateFrom: schema.PopulateFunc(func(rec *schema.Record, kw map[string]any) any {
			return "fallback title"
		}),
	})

	rec := newTestRecord(t, def)
	rec.Values["title"] = "stored title"

	assert.Equal(t, "stored title", Value(rec, "title"))
}

func TestEmptyStoredValueFallsThrough(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{
		Name:     "title",
		Editable: true,
		PopulateFrom: schema.PopulateFunc(func(rec *schema.Record, kw map[string]any) any {
			return "populated"
		}),
	})

	rec := newTestRecord(t, def)
	rec.Values["title"] = ""

	assert.Equal(t, "populated", Value(rec, "title"),
		"an explicitly stored empty value must not short-circuit resolution")
}

func TestNonEditableFieldIgnoresStoredValue(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{
		Name:         "generator",
		Editable:     false,
		PopulateFrom: schema.Literal{Value: "seometa"},
	})

	rec := newTestRecord(t, def)
	rec.Values["generator"] = "stored"

	assert.Equal(t, "seometa", Value(rec, "generator"))
}

func TestPopulateFromKwargs(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{
		Name: "title",
		PopulateFrom: schema.PopulateFunc(func(rec *schema.Record, kw map[string]any) any {
			return "page at " + kw["path"].(string)
		}),
	})

	rec := newTestRecord(t, def)
	rec.PopulateKwargs["path"] = "/about/"

	assert.Equal(t, "page at /about/", Value(rec, "title"))
}

func TestAliasResolution(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{Name: "title", Editable: true})
	def.MustAddField(&schema.FieldSpec{Name: "og_title", PopulateFrom: schema.Alias("title")})

	rec := newTestRecord(t, def)
	rec.Values["title"] = "Widgets"

	assert.Equal(t, Value(rec, "title"), Value(rec, "og_title"),
		"resolving an alias must match resolving its target directly")
}

func TestAliasCycleTerminates(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{Name: "a", PopulateFrom: schema.Alias("b")})
	def.MustAddField(&schema.FieldSpec{Name: "b", PopulateFrom: schema.Alias("a")})

	rec := newTestRecord(t, def)
	assert.Nil(t, Value(rec, "a"))
}

func TestDefinitionAttributes(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.Attrs["site_name"] = "Widget Shop"
	def.Attrs["greeting"] = func(rec *schema.Record) any {
		return "hello from " + rec.Schema.Backend
	}
	def.Attrs["group"] = func(d *schema.Definition) any {
		return d.Name
	}

	rec := newTestRecord(t, def)

	assert.Equal(t, "Widget Shop", Value(rec, "site_name"))
	assert.Equal(t, "hello from path", Value(rec, "greeting"))
	assert.Equal(t, "seo", Value(rec, "group"))
	assert.Nil(t, Value(rec, "missing"), "unknown names resolve to no value")
}

func TestTemplateSubstitution(t *testing.T) {
	def := schema.NewDefinition("seo")
	def.MustAddField(&schema.FieldSpec{Name: "title", Editable: true})

	rec := newTestRecord(t, def)
	rec.ContentObject = &product{Name: "Widget"}

	t.Run("token substituted from content object", func(t *testing.T) {
		rec.Values["title"] = "Buy {{ product.name }}"
		assert.Equal(t, "Buy Widget", Value(rec, "title"))
	})

	t.Run("method call", func(t *testing.T) {
		rec.Values["title"] = "{{ product.Tagline }}"
		assert.Equal(t, "Widget is great", Value(rec, "title"))
	})

	t.Run("plain value unchanged", func(t *testing.T) {
		rec.Values["title"] = "Plain title"
		assert.Equal(t, "Plain title", Value(rec, "title"))
	})

	t.Run("missing variable returns unrendered value", func(t *testing.T) {
		rec.Values["title"] = "Buy {{ gadget.name }}"
		assert.Equal(t, "Buy {{ gadget.name }}", Value(rec, "title"))
	})

	t.Run("view context available", func(t *testing.T) {
		rec.ViewContext = map[string]any{"shop": map[string]any{"city": "Berlin"}}
		rec.Values["title"] = "Shops in {{ shop.city }}"
		assert.Equal(t, "Shops in Berlin", Value(rec, "title"))
	})

	t.Run("literal with token is still rendered", func(t *testing.T) {
		def.MustAddField(&schema.FieldSpec{
			Name:         "footer",
			PopulateFrom: schema.Literal{Value: "About {{ product.name }}"},
		})
		assert.Equal(t, "About Widget", Value(rec, "footer"))
	})
}

func TestNewContext(t *testing.T) {
	t.Run("view_context sub-map extracted", func(t *testing.T) {
		vc := map[string]any{"object": 1}
		rc := NewContext(map[string]any{"view_context": vc})
		assert.Equal(t, 1, rc.ViewObject())
	})

	t.Run("plain map used directly", func(t *testing.T) {
		rc := NewContext(map[string]any{"object": "x"})
		assert.Equal(t, "x", rc.ViewObject())
	})

	t.Run("nil caller context", func(t *testing.T) {
		rc := NewContext(nil)
		assert.Nil(t, rc.ViewObject())
	})
}
