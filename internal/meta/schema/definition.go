package schema

import (
	"fmt"
)

// Definition is a named group of metadata fields plus optional attributes.
// Callers request metadata by definition name; the engine builds one record
// schema per active backend for each registered definition.
type Definition struct {
	Name        string
	VerboseName string

	fields []*FieldSpec
	byName map[string]*FieldSpec

	// Attrs holds definition-level attributes consulted when a requested
	// name is not a declared field. Values may be constants, a
	// func(*Record) any invoked with the resolving record, or a
	// func(*Definition) any invoked with the definition itself.
	Attrs map[string]any
}

// NewDefinition creates an empty metadata definition.
func NewDefinition(name string) *Definition {
	return &Definition{
		Name:   name,
		byName: make(map[string]*FieldSpec),
		Attrs:  make(map[string]any),
	}
}

// AddField declares a metadata field. Field order is preserved for schema
// construction and head rendering. Reserved and duplicate names are
// rejected.
func (d *Definition) AddField(spec *FieldSpec) error {
	if err := validateFieldName(spec.Name); err != nil {
		return err
	}
	if _, exists := d.byName[spec.Name]; exists {
		return fmt.Errorf("field %s is already declared on %s", spec.Name, d.Name)
	}
	d.fields = append(d.fields, spec)
	d.byName[spec.Name] = spec
	return nil
}

// MustAddField is AddField but panics on error. Intended for package-level
// definition construction at startup.
func (d *Definition) MustAddField(spec *FieldSpec) *Definition {
	if err := d.AddField(spec); err != nil {
		panic(err)
	}
	return d
}

// Field returns the spec for a declared field name.
func (d *Definition) Field(name string) (*FieldSpec, bool) {
	spec, ok := d.byName[name]
	return spec, ok
}

// Fields returns the declared field specs in declaration order.
func (d *Definition) Fields() []*FieldSpec {
	out := make([]*FieldSpec, len(d.fields))
	copy(out, d.fields)
	return out
}

// HasField reports whether the definition declares the given field.
func (d *Definition) HasField(name string) bool {
	_, ok := d.byName[name]
	return ok
}
