// Package backend defines the matching strategies that associate stored
// metadata with a category of target: a URL path, a named view, a single
// model instance, or a model class. Backends share one registration
// mechanism, one uniqueness-derivation contract and one query-filtering
// contract; only the matching rule differs per variant.
package backend

import (
	"fmt"

	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
)

// Target is the thing metadata is being requested for: a canonicalized path
// string, a domain object, or both. A zero Target is unresolvable.
type Target struct {
	// Path is the canonicalized request path, empty when unknown.
	Path string

	// Object is the domain object the request is about, nil for plain
	// path lookups.
	Object any
}

// IsZero reports whether the target carries neither a path nor an object.
func (t Target) IsZero() bool {
	return t.Path == "" && t.Object == nil
}

// ViewResolver resolves a path to the name of the view that serves it. It
// is an external collaborator (typically the application router); the view
// backend stores an empty view name when resolution fails.
type ViewResolver interface {
	ResolveToName(path string) string
}

// Env carries the read-only hosting-environment configuration backends
// consult while matching: the URL-resolution collaborator and the
// canonicalization convention. It is assembled by the engine, not owned by
// any backend.
type Env struct {
	Views       ViewResolver
	AppendSlash bool
}

// Backend is the common contract of all matching strategies.
type Backend interface {
	// Name is the registry key, unique per backend.
	Name() string

	// VerboseName is the human-readable backend name.
	VerboseName() string

	// UniqueTogether returns the field tuples that make a record unique
	// for this backend, with the enabled axis columns folded into each
	// tuple.
	UniqueTogether(opts schema.Options) [][]string

	// KeyFields returns the backend-specific key columns of the record
	// schema.
	KeyFields() []*schema.FieldSpec

	// BuildSchema derives the full record schema for a definition under
	// the given options.
	BuildSchema(def *schema.Definition, opts schema.Options) (*schema.RecordSchema, error)

	// MatchConditions translates a target into equality conditions over
	// the backend's key columns. ok is false when the backend cannot
	// attempt a match for this target.
	MatchConditions(t Target, env Env, rc *resolve.Context) (conds map[string]any, ok bool)

	// PrepareRecord attaches per-resolution state to a matched record:
	// populate-from kwargs, the content object and the view context. It
	// may also write keys into rc for backends matched later.
	PrepareRecord(rec *schema.Record, t Target, rc *resolve.Context)

	// Validate checks cross-backend invariants against the configured
	// options. The default is a no-op.
	Validate(opts schema.Options) error
}

// base carries the declarative part of a backend variant.
type base struct {
	name           string
	verboseName    string
	uniqueTogether [][]string
}

func (b base) Name() string        { return b.name }
func (b base) VerboseName() string { return b.verboseName }

func (b base) UniqueTogether(opts schema.Options) [][]string {
	return schema.FoldAxes(b.uniqueTogether, opts)
}

// Validate is the default no-op invariant check.
func (b base) Validate(opts schema.Options) error { return nil }

func (b base) buildSchema(def *schema.Definition, keys []*schema.FieldSpec, opts schema.Options) (*schema.RecordSchema, error) {
	rs, err := schema.Build(def, b.name, keys, b.UniqueTogether(opts), opts)
	if err != nil {
		return nil, fmt.Errorf("building %s schema for %s: %w", b.name, def.Name, err)
	}
	return rs, nil
}
