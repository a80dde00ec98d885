package schema

import (
	"testing"
)

type product struct {
	ID   int64
	Name string
}

func (p *product) AbsoluteURL() string { return "/products/widget/" }

type page struct {
	Slug string
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Product":     "product",
		"BlogPost":    "blog_post",
		"HTTPServer":  "http_server",
		"page":        "page",
		"APIKey":      "api_key",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestContentTypeOf(t *testing.T) {
	if got := ContentTypeOf(&product{}); got != "product" {
		t.Errorf("expected product, got %s", got)
	}
	if got := ContentTypeOf(product{}); got != "product" {
		t.Errorf("expected product for value type, got %s", got)
	}
	if got := ContentTypeOf(nil); got != "" {
		t.Errorf("expected empty for nil, got %s", got)
	}
}

func TestObjectID(t *testing.T) {
	t.Run("ID field fallback", func(t *testing.T) {
		id, ok := ObjectID(&product{ID: 42})
		if !ok || id != 42 {
			t.Errorf("expected 42, got %d (ok=%v)", id, ok)
		}
	})

	t.Run("no identifier", func(t *testing.T) {
		if _, ok := ObjectID(&page{Slug: "home"}); ok {
			t.Error("expected no identifier for struct without ID")
		}
	})

	t.Run("entity interface wins", func(t *testing.T) {
		id, ok := ObjectID(entityOnly{})
		if !ok || id != 7 {
			t.Errorf("expected 7, got %d (ok=%v)", id, ok)
		}
	})
}

type entityOnly struct{}

func (entityOnly) EntityID() int64 { return 7 }

func TestIsEmptyValue(t *testing.T) {
	empty := []any{nil, "", "   ", []byte(""), false}
	for _, v := range empty {
		if !IsEmptyValue(v) {
			t.Errorf("expected %#v to be empty", v)
		}
	}
	nonEmpty := []any{"x", []byte("x"), true, 0}
	for _, v := range nonEmpty {
		if IsEmptyValue(v) {
			t.Errorf("expected %#v to be non-empty", v)
		}
	}
}

func TestDefinitionFields(t *testing.T) {
	def := NewDefinition("seo")

	if err := def.AddField(&FieldSpec{Name: "title", Editable: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("reserved name rejected", func(t *testing.T) {
		if err := def.AddField(&FieldSpec{Name: "_path"}); err == nil {
			t.Error("expected error for reserved name")
		}
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		if err := def.AddField(&FieldSpec{Name: "title"}); err == nil {
			t.Error("expected error for duplicate field")
		}
	})

	t.Run("declaration order preserved", func(t *testing.T) {
		def.MustAddField(&FieldSpec{Name: "keywords"})
		fields := def.Fields()
		if len(fields) != 2 || fields[0].Name != "title" || fields[1].Name != "keywords" {
			t.Errorf("unexpected field order: %v", fields)
		}
	})
}
