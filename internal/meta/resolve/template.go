package resolve

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/seometa/seometa/internal/meta/schema"
)

// tokenPattern matches substitution tokens of the form {{ object.attr }}.
// Only dotted identifier lookups are supported; there is no expression
// evaluation in stored values.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*\}\}`)

// ContainsToken reports whether a string value needs a substitution pass.
func ContainsToken(s string) bool {
	return strings.Contains(s, "{")
}

// RenderValue substitutes tokens in value against a bounded context: the
// record's content object (keyed by its content-type name) plus the ambient
// view context. A lookup failure aborts rendering with an error; callers
// fall back to the unrendered value.
func RenderValue(value string, rec *schema.Record) (string, error) {
	if !tokenPattern.MatchString(value) {
		return value, nil
	}

	ctx := make(map[string]any)
	for k, v := range rec.ViewContext {
		ctx[k] = v
	}
	if rec.ContentObject != nil {
		if name := schema.ContentTypeOf(rec.ContentObject); name != "" {
			ctx[name] = rec.ContentObject
		}
	}

	var lookupErr error
	out := tokenPattern.ReplaceAllStringFunc(value, func(tok string) string {
		expr := tokenPattern.FindStringSubmatch(tok)[1]
		v, err := lookupPath(ctx, expr)
		if err != nil {
			lookupErr = err
			return tok
		}
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	})
	if lookupErr != nil {
		return "", lookupErr
	}
	return out, nil
}

// lookupPath resolves a dotted path through maps, struct fields and no-arg
// methods. Field lookup is tried verbatim first, then with the first letter
// upper-cased so stored values can use lower-case names for exported Go
// fields.
func lookupPath(ctx map[string]any, expr string) (any, error) {
	segments := strings.Split(expr, ".")
	cur, ok := ctx[segments[0]]
	if !ok {
		return nil, fmt.Errorf("unknown variable %s", segments[0])
	}
	for _, seg := range segments[1:] {
		next, err := lookupSegment(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr, err)
		}
		cur = next
	}
	return cur, nil
}

func lookupSegment(v any, seg string) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot look up %s on nil", seg)
	}

	if m, ok := v.(map[string]any); ok {
		val, exists := m[seg]
		if !exists {
			return nil, fmt.Errorf("missing key %s", seg)
		}
		return val, nil
	}

	rv := reflect.ValueOf(v)

	// No-arg method, on the value or its pointer.
	for _, name := range []string{seg, exportedName(seg)} {
		m := rv.MethodByName(name)
		if m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return m.Call(nil)[0].Interface(), nil
		}
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot look up %s on nil", seg)
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		val := rv.MapIndex(reflect.ValueOf(seg))
		if !val.IsValid() {
			return nil, fmt.Errorf("missing key %s", seg)
		}
		return val.Interface(), nil
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot look up %s on %s", seg, rv.Kind())
	}

	for _, name := range []string{seg, exportedName(seg)} {
		f := rv.FieldByName(name)
		if f.IsValid() && f.CanInterface() {
			return f.Interface(), nil
		}
	}
	return nil, fmt.Errorf("no field %s", seg)
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
