package meta

import (
	"fmt"
	"html"
	"strings"

	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// Resolved is the outcome of a metadata request: the matched records in
// backend order, behind a per-field fallback view. A field resolves to the
// first non-empty value across the records, so a path record can override
// just the title while the model record still supplies the description.
type Resolved struct {
	def     *schema.Definition
	records []*schema.Record
}

func newResolved(def *schema.Definition, records []*schema.Record) *Resolved {
	return &Resolved{def: def, records: records}
}

// Records returns the matched records in backend order. Empty when nothing
// matched; resolution still works through definition attributes.
func (r *Resolved) Records() []*schema.Record {
	out := make([]*schema.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Get resolves a field or attribute name to its final value, consulting
// each matched record in backend order and returning the first non-empty
// result. With no matched records, definition attributes still resolve
// through a synthetic record so constants and definition-bound callables
// keep working.
func (r *Resolved) Get(name string) any {
	for _, rec := range r.records {
		if v := resolve.Value(rec, name); !schema.IsEmptyValue(v) {
			return v
		}
	}
	if len(r.records) == 0 {
		rec := schema.NewRecord(&schema.RecordSchema{Definition: r.def})
		return resolve.Value(rec, name)
	}
	return nil
}

// GetString resolves a name and renders the value as a string; nil
// resolves to the empty string.
func (r *Resolved) GetString(name string) string {
	v := r.Get(name)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Values resolves every declared field, in declaration order, into a map.
// Fields that resolve to nothing are omitted.
func (r *Resolved) Values() map[string]any {
	out := make(map[string]any, len(r.def.Fields()))
	for _, field := range r.def.Fields() {
		if v := r.Get(field.Name); !schema.IsEmptyValue(v) {
			out[field.Name] = v
		}
	}
	return out
}

// HeadHTML renders the head-marked fields as an HTML block: the title
// field becomes a <title> element, everything else a <meta> tag named
// after the field (or its HeadTag override). Values are escaped; empty
// fields are skipped.
func (r *Resolved) HeadHTML() string {
	var b strings.Builder
	for _, field := range r.def.Fields() {
		if !field.Head {
			continue
		}
		value := r.GetString(field.Name)
		if value == "" {
			continue
		}

		tag := field.HeadTag
		if tag == "" {
			tag = field.Name
		}
		if tag == "title" {
			fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(value))
			continue
		}
		fmt.Fprintf(&b, "<meta name=\"%s\" content=\"%s\" />\n",
			html.EscapeString(tag), html.EscapeString(value))
	}
	return b.String()
}
