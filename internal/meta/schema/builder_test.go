package schema

import (
	"testing"
)

func testDefinition(t *testing.T) *Definition {
	t.Helper()
	def := NewDefinition("seo")
	def.MustAddField(&FieldSpec{Name: "title", Editable: true, Head: true})
	def.MustAddField(&FieldSpec{Name: "description", Editable: true, Head: true, Kind: KindText})
	return def
}

func TestFoldAxes(t *testing.T) {
	tuples := [][]string{{"_path"}}

	t.Run("no axes", func(t *testing.T) {
		folded := FoldAxes(tuples, Options{})
		if len(folded) != 1 || len(folded[0]) != 1 || folded[0][0] != "_path" {
			t.Errorf("expected tuples unchanged, got %v", folded)
		}
	})

	t.Run("all axes", func(t *testing.T) {
		folded := FoldAxes(tuples, Options{UseSites: true, UseI18n: true, UseSubdomains: true})
		want := []string{"_path", "_site", "_language", "_subdomain"}
		if len(folded) != 1 {
			t.Fatalf("expected 1 tuple, got %d", len(folded))
		}
		for i, col := range want {
			if folded[0][i] != col {
				t.Errorf("tuple[%d]: expected %s, got %s", i, col, folded[0][i])
			}
		}
	})

	t.Run("multiple tuples each folded", func(t *testing.T) {
		folded := FoldAxes([][]string{{"_path"}, {"_content_type", "_object_id"}}, Options{UseI18n: true})
		if len(folded) != 2 {
			t.Fatalf("expected 2 tuples, got %d", len(folded))
		}
		if folded[0][len(folded[0])-1] != ColLanguage {
			t.Errorf("first tuple missing language column: %v", folded[0])
		}
		if folded[1][len(folded[1])-1] != ColLanguage {
			t.Errorf("second tuple missing language column: %v", folded[1])
		}
	})

	t.Run("input tuples are not mutated", func(t *testing.T) {
		in := [][]string{{"_view"}}
		FoldAxes(in, Options{UseSites: true})
		if len(in[0]) != 1 {
			t.Errorf("input tuple mutated: %v", in[0])
		}
	})
}

func TestBuild(t *testing.T) {
	def := testDefinition(t)
	keys := []*FieldSpec{{Name: "_path", Editable: true}}
	opts := Options{UseSites: true, UseSubdomains: true, Backends: []string{"path"}}

	rs, err := Build(def, "path", keys, FoldAxes([][]string{{"_path"}}, opts), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rs.TableName != "seo_path" {
		t.Errorf("expected table seo_path, got %s", rs.TableName)
	}

	wantCols := []string{"_path", "_site", "_subdomain", "_all_subdomains", "title", "description"}
	cols := rs.Columns()
	if len(cols) != len(wantCols) {
		t.Fatalf("expected columns %v, got %v", wantCols, cols)
	}
	for i, c := range wantCols {
		if cols[i] != c {
			t.Errorf("column %d: expected %s, got %s", i, c, cols[i])
		}
	}

	if rs.HasLanguage {
		t.Error("language axis should be disabled")
	}
	if len(rs.Unique) != 1 {
		t.Fatalf("expected 1 unique tuple, got %d", len(rs.Unique))
	}
}

func TestBuildRequiresKeyFields(t *testing.T) {
	def := testDefinition(t)
	if _, err := Build(def, "path", nil, nil, Options{}); err == nil {
		t.Error("expected error for missing key fields")
	}
	if _, err := Build(nil, "path", []*FieldSpec{{Name: "_path"}}, nil, Options{}); err == nil {
		t.Error("expected error for nil definition")
	}
}

func TestFieldKind(t *testing.T) {
	def := testDefinition(t)
	opts := Options{UseSites: true, UseI18n: true, UseSubdomains: true}
	rs, err := Build(def, "path", []*FieldSpec{{Name: "_path"}}, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]Kind{
		"_path":           KindString,
		"_site":           KindInt,
		"_language":       KindString,
		"_all_subdomains": KindBool,
		"description":     KindText,
	}
	for col, want := range cases {
		kind, ok := rs.FieldKind(col)
		if !ok {
			t.Errorf("column %s not found", col)
			continue
		}
		if kind != want {
			t.Errorf("column %s: expected %s, got %s", col, want, kind)
		}
	}

	if _, ok := rs.FieldKind("nope"); ok {
		t.Error("unknown column should not resolve")
	}
}
