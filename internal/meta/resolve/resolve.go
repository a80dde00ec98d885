package resolve

import (
	"github.com/seometa/seometa/internal/meta/schema"
)

// maxAliasDepth bounds alias chains so that a cyclic populate-from alias
// resolves to no value instead of recursing forever.
const maxAliasDepth = 10

// Value computes the final value of a field on a matched record. The
// precedence chain, first non-empty result wins:
//
//  1. a non-empty stored value, if the field is editable
//  2. the field's populate-from source (callable, literal or alias)
//  3. a definition attribute of the same name (callable or constant)
//
// The result then takes a template-substitution pass when it is a string
// containing a brace token. Substitution failures are swallowed and the
// unrendered value returned, since a missing rendering context must not
// fail the whole resolution.
func Value(rec *schema.Record, name string) any {
	return finish(rec, resolveRaw(rec, name, 0))
}

// RawValue is Value without the template-substitution pass.
func RawValue(rec *schema.Record, name string) any {
	return resolveRaw(rec, name, 0)
}

func resolveRaw(rec *schema.Record, name string, depth int) any {
	if depth > maxAliasDepth {
		return nil
	}
	def := rec.Schema.Definition

	if field, ok := def.Field(name); ok {
		// An explicitly stored empty value does not short-circuit; it
		// falls through to populate-from.
		if field.Editable {
			if v := rec.Stored(name); !schema.IsEmptyValue(v) {
				return v
			}
		}

		switch pf := field.PopulateFrom.(type) {
		case schema.PopulateFunc:
			return pf(rec, rec.PopulateKwargs)
		case func(rec *schema.Record, kwargs map[string]any) any:
			return pf(rec, rec.PopulateKwargs)
		case schema.Literal:
			return pf.Value
		case schema.Alias:
			return resolveRaw(rec, string(pf), depth+1)
		case string:
			return resolveRaw(rec, pf, depth+1)
		case nil:
			// Unset: fall through to attribute lookup.
		default:
			return pf
		}
	}

	// Not a declared field (or an unset populate-from): consult the
	// definition's attributes. Callables are invoked bound to either the
	// record or the definition; anything else is returned directly.
	if attr, ok := def.Attrs[name]; ok {
		switch fn := attr.(type) {
		case func(*schema.Record) any:
			return fn(rec)
		case func(*schema.Definition) any:
			return fn(def)
		default:
			return attr
		}
	}

	return nil
}

// finish applies the template-substitution pass to string results that
// carry a brace token. Literal values are not exempt: a literal containing
// a token is still rendered.
func finish(rec *schema.Record, v any) any {
	s, ok := v.(string)
	if !ok || !ContainsToken(s) {
		return v
	}
	rendered, err := RenderValue(s, rec)
	if err != nil {
		return s
	}
	return rendered
}
