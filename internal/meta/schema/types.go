// Package schema defines the data model for metadata records: the Options
// configuration value, user-declared field specifications, and the record
// schema derived per backend from both.
package schema

import (
	"fmt"
	"reflect"
)

// Options configures which cross-cutting axes are enabled and which backends
// are active, in matching order. Options is read-only after construction.
type Options struct {
	UseSites      bool
	UseI18n       bool
	UseSubdomains bool

	// Backends is the ordered list of active backend names. Order matters:
	// earlier backends are matched first, and the model backend requires
	// modelinstance to appear before it.
	Backends []string
}

// BackendIndex returns the position of a backend name in the active list,
// or -1 if the backend is not active.
func (o Options) BackendIndex(name string) int {
	for i, n := range o.Backends {
		if n == name {
			return i
		}
	}
	return -1
}

// Kind is the storage type of a metadata field.
type Kind int

const (
	// KindString is a short string column (VARCHAR).
	KindString Kind = iota
	// KindText is an unbounded text column.
	KindText
	// KindBool is a boolean column.
	KindBool
	// KindInt is an integer column.
	KindInt
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// PopulateFunc computes a fallback value for a field that has no stored
// value. The kwargs map carries backend-specific context: "path" for the
// path backend, "view_name" for the view backend, "model_instance" for the
// modelinstance backend and "content_type" for the model backend.
type PopulateFunc func(rec *Record, kwargs map[string]any) any

// Literal wraps a constant populate-from value. The wrapped value is
// returned as-is instead of being treated as a field alias.
type Literal struct {
	Value any
}

// Alias names another field to resolve in place of the declaring field.
type Alias string

// FieldSpec describes one user-declared metadata field.
type FieldSpec struct {
	Name string

	// Editable marks the field as user-editable: a non-empty stored value
	// takes precedence over PopulateFrom.
	Editable bool

	// PopulateFrom is the fallback value source: a PopulateFunc, a Literal,
	// an Alias, or nil when the field has no fallback.
	PopulateFrom any

	// Head marks the field for inclusion in the rendered head block.
	Head bool

	// HeadTag is the tag name used when rendering the head block. Fields
	// named "title" render as <title>; everything else defaults to a
	// <meta name=...> tag.
	HeadTag string

	Kind Kind
}

// reservedFieldNames may not be used for user-declared fields because they
// collide with record key columns or record internals.
var reservedFieldNames = map[string]bool{
	"id":              true,
	"_path":           true,
	"_view":           true,
	"_content_type":   true,
	"_object_id":      true,
	"_site":           true,
	"_language":       true,
	"_subdomain":      true,
	"_all_subdomains": true,
}

// IsReservedFieldName reports whether name is reserved for internal use.
func IsReservedFieldName(name string) bool {
	return reservedFieldNames[name]
}

// Entity identifies a domain object that metadata can be linked to.
type Entity interface {
	EntityID() int64
}

// Locatable is implemented by domain objects that expose a canonical URL.
// The modelinstance backend derives a record's _path from it on save.
type Locatable interface {
	AbsoluteURL() string
}

// ContentTypeOf returns the content-type name for a domain object: the
// snake_case form of its Go type name. Pointers are dereferenced first.
func ContentTypeOf(obj any) string {
	if obj == nil {
		return ""
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	return ToSnakeCase(t.Name())
}

// ObjectID extracts the identifier of a domain object. Objects should
// implement Entity; as a fallback an exported integer ID field is used.
func ObjectID(obj any) (int64, bool) {
	if e, ok := obj.(Entity); ok {
		return e.EntityID(), true
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}
	f := v.FieldByName("ID")
	if !f.IsValid() {
		return 0, false
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(f.Uint()), true
	}
	return 0, false
}

// ToSnakeCase converts a CamelCase name to snake_case.
func ToSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}

// validateFieldName checks a user-declared field name.
func validateFieldName(name string) error {
	if name == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if IsReservedFieldName(name) {
		return fmt.Errorf("field name %s is reserved", name)
	}
	return nil
}
