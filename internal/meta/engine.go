// Package meta wires the metadata engine together: configured options,
// registered backends, stored records and the value-resolution chain. Its
// two entry points, GetMetadata and GetLinkedMetadata, are what the
// rendering layer calls.
package meta

import (
	"context"
	"fmt"
	"sync"

	"github.com/seometa/seometa/internal/meta/backend"
	"github.com/seometa/seometa/internal/meta/resolve"
	"github.com/seometa/seometa/internal/meta/schema"
	"github.com/seometa/seometa/internal/meta/store"
)

// DefaultBackends is the backend order used when Options does not name
// any: every built-in backend, with modelinstance ahead of model.
var DefaultBackends = []string{"path", "modelinstance", "model", "view"}

// Settings is the engine's read-only configuration, combining Options with
// the hosting environment's conventions.
type Settings struct {
	Options schema.Options

	// Languages is the set of enabled language codes; informational for
	// the serving layer, the engine itself does not restrict lookups.
	Languages []string

	// DefaultSite is the site id assumed when a request does not name
	// one.
	DefaultSite int64

	// AppendSlash enables the trailing-slash canonicalization convention.
	AppendSlash bool

	// Views resolves paths to view names for the view backend. Optional.
	Views backend.ViewResolver
}

type definitionEntry struct {
	def     *schema.Definition
	schemas map[string]*schema.RecordSchema
}

// Engine resolves metadata for targets. Construct with New, register
// definitions during startup, then serve lookups; the definition registry
// must not be mutated concurrently with lookups.
type Engine struct {
	settings Settings
	backends []backend.Backend
	store    *store.Store

	mu       sync.RWMutex
	defs     map[string]*definitionEntry
	defOrder []string
}

// New validates the configured backend list and creates an engine.
// Unknown backend names and ordering violations fail construction, never a
// later request.
func New(settings Settings, st *store.Store) (*Engine, error) {
	if len(settings.Options.Backends) == 0 {
		settings.Options.Backends = DefaultBackends
	}

	backends := make([]backend.Backend, 0, len(settings.Options.Backends))
	for _, name := range settings.Options.Backends {
		b, err := backend.Lookup(name)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	for _, b := range backends {
		if err := b.Validate(settings.Options); err != nil {
			return nil, err
		}
	}

	return &Engine{
		settings: settings,
		backends: backends,
		store:    st,
		defs:     make(map[string]*definitionEntry),
	}, nil
}

// Settings returns the engine configuration.
func (e *Engine) Settings() Settings { return e.settings }

// Backends returns the active backends in matching order.
func (e *Engine) Backends() []backend.Backend {
	out := make([]backend.Backend, len(e.backends))
	copy(out, e.backends)
	return out
}

// RegisterDefinition builds the per-backend record schemas for a
// definition and adds it to the engine. The first registered definition
// becomes the default group for callers that pass an empty group name.
func (e *Engine) RegisterDefinition(def *schema.Definition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.defs[def.Name]; exists {
		return fmt.Errorf("metadata group %s is already registered", def.Name)
	}

	entry := &definitionEntry{
		def:     def,
		schemas: make(map[string]*schema.RecordSchema),
	}
	for _, b := range e.backends {
		rs, err := b.BuildSchema(def, e.settings.Options)
		if err != nil {
			return err
		}
		entry.schemas[b.Name()] = rs
	}

	e.defs[def.Name] = entry
	e.defOrder = append(e.defOrder, def.Name)
	return nil
}

// Definition returns a registered definition by group name; the empty name
// selects the default group.
func (e *Engine) Definition(group string) (*schema.Definition, error) {
	entry, err := e.entry(group)
	if err != nil {
		return nil, err
	}
	return entry.def, nil
}

// Groups returns the registered group names in registration order.
func (e *Engine) Groups() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.defOrder))
	copy(out, e.defOrder)
	return out
}

// AllSchemas returns every record schema of every registered definition,
// in registration then backend order. Used for migration.
func (e *Engine) AllSchemas() []*schema.RecordSchema {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []*schema.RecordSchema
	for _, name := range e.defOrder {
		entry := e.defs[name]
		for _, b := range e.backends {
			out = append(out, entry.schemas[b.Name()])
		}
	}
	return out
}

// Migrate creates the backing tables for every registered definition.
func (e *Engine) Migrate(ctx context.Context) error {
	return e.store.Migrate(ctx, e.AllSchemas())
}

// Schema returns the record schema for one group and backend.
func (e *Engine) Schema(group, backendName string) (*schema.RecordSchema, error) {
	entry, err := e.entry(group)
	if err != nil {
		return nil, err
	}
	rs, ok := entry.schemas[backendName]
	if !ok {
		return nil, &backend.UnknownBackendError{Name: backendName}
	}
	return rs, nil
}

func (e *Engine) entry(group string) (*definitionEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if group == "" {
		if len(e.defOrder) == 0 {
			return nil, &UnknownGroupError{Name: group}
		}
		return e.defs[e.defOrder[0]], nil
	}
	entry, ok := e.defs[group]
	if !ok {
		return nil, &UnknownGroupError{Name: group}
	}
	return entry, nil
}

// Option narrows a metadata request to a site, language or subdomain.
type Option func(*requestScope)

type requestScope struct {
	site      *int64
	language  string
	subdomain *string
}

// WithSite scopes the request to a site id.
func WithSite(site int64) Option {
	return func(rs *requestScope) { rs.site = &site }
}

// WithLanguage scopes the request to a language code.
func WithLanguage(language string) Option {
	return func(rs *requestScope) { rs.language = language }
}

// WithSubdomain scopes the request to a subdomain.
func WithSubdomain(subdomain string) Option {
	return func(rs *requestScope) { rs.subdomain = &subdomain }
}

func (e *Engine) params(opts []Option) store.Params {
	var scope requestScope
	for _, o := range opts {
		o(&scope)
	}
	p := store.Params{
		Site:      e.settings.DefaultSite,
		Language:  scope.language,
		Subdomain: scope.subdomain,
	}
	if scope.site != nil {
		p.Site = *scope.site
	}
	return p
}

// GetMetadata resolves metadata for a request path. The caller context may
// carry a "view_context" map whose entries become template-substitution
// context; backends also thread match information through it.
func (e *Engine) GetMetadata(ctx context.Context, path, group string, callerCtx map[string]any, opts ...Option) (*Resolved, error) {
	if path == "" {
		return nil, &TargetUnresolvableError{Reason: "no path given"}
	}
	target := backend.Target{
		Path: backend.CanonicalizePath(path, e.settings.AppendSlash),
	}
	return e.resolveTarget(ctx, target, group, callerCtx, opts)
}

// GetLinkedMetadata resolves metadata for a domain object. The object's
// canonical URL, when it exposes one, also participates in path-keyed
// matching.
func (e *Engine) GetLinkedMetadata(ctx context.Context, obj any, group string, callerCtx map[string]any, opts ...Option) (*Resolved, error) {
	if obj == nil {
		return nil, &TargetUnresolvableError{Reason: "no object given"}
	}
	target := backend.Target{Object: obj}
	if loc, ok := obj.(schema.Locatable); ok {
		target.Path = backend.CanonicalizePath(loc.AbsoluteURL(), e.settings.AppendSlash)
	}
	return e.resolveTarget(ctx, target, group, callerCtx, opts)
}

func (e *Engine) resolveTarget(ctx context.Context, target backend.Target, group string, callerCtx map[string]any, opts []Option) (*Resolved, error) {
	if target.IsZero() {
		return nil, &TargetUnresolvableError{}
	}

	entry, err := e.entry(group)
	if err != nil {
		return nil, err
	}

	rc := resolve.NewContext(callerCtx)
	env := backend.Env{Views: e.settings.Views, AppendSlash: e.settings.AppendSlash}
	params := e.params(opts)

	var records []*schema.Record
	for _, b := range e.backends {
		conds, ok := b.MatchConditions(target, env, rc)
		if !ok {
			continue
		}
		rec, err := e.store.FetchOne(ctx, entry.schemas[b.Name()], conds, params)
		if err != nil {
			return nil, fmt.Errorf("matching %s backend: %w", b.Name(), err)
		}
		if rec == nil {
			continue
		}
		b.PrepareRecord(rec, target, rc)
		records = append(records, rec)
	}

	return newResolved(entry.def, records), nil
}

// LinkRecord stores a modelinstance metadata record for a domain object,
// deriving the content type, object id and denormalized path. Duplicate
// keys are discarded: the returned result reports Saved=false and no error
// is raised, the accepted weak-consistency trade-off of this write path.
func (e *Engine) LinkRecord(ctx context.Context, group string, obj any, values map[string]any, opts ...Option) (store.SaveResult, error) {
	if obj == nil {
		return store.SaveResult{}, &TargetUnresolvableError{Reason: "no object given"}
	}
	rs, err := e.Schema(group, "modelinstance")
	if err != nil {
		return store.SaveResult{}, err
	}
	id, ok := schema.ObjectID(obj)
	if !ok {
		return store.SaveResult{}, &TargetUnresolvableError{Reason: "object has no identifier"}
	}

	row := make(map[string]any, len(values)+3)
	for k, v := range values {
		row[k] = v
	}
	row["_content_type"] = schema.ContentTypeOf(obj)
	row["_object_id"] = id

	b, err := backend.Lookup("modelinstance")
	if err != nil {
		return store.SaveResult{}, err
	}
	env := backend.Env{AppendSlash: e.settings.AppendSlash}
	if path, ok := b.(*backend.ModelInstanceBackend).DerivePath(obj, env); ok {
		row["_path"] = path
	}

	e.applyScope(rs, row, opts)
	return e.store.Save(ctx, rs, row, true)
}

// PutRecord stores a metadata record for any backend. Path keys are
// canonicalized before saving so stored and requested paths agree.
// Conflicts are errors for every backend except modelinstance, which keeps
// its discard behavior.
func (e *Engine) PutRecord(ctx context.Context, group, backendName string, values map[string]any, opts ...Option) (store.SaveResult, error) {
	rs, err := e.Schema(group, backendName)
	if err != nil {
		return store.SaveResult{}, err
	}

	row := make(map[string]any, len(values))
	for k, v := range values {
		row[k] = v
	}
	if path, ok := row["_path"].(string); ok {
		row["_path"] = backend.CanonicalizePath(path, e.settings.AppendSlash)
	}

	e.applyScope(rs, row, opts)
	return e.store.Save(ctx, rs, row, backendName == "modelinstance")
}

// applyScope copies the request scope into axis columns, leaving existing
// values alone so callers can set axis columns directly.
func (e *Engine) applyScope(rs *schema.RecordSchema, row map[string]any, opts []Option) {
	var scope requestScope
	for _, o := range opts {
		o(&scope)
	}
	if rs.HasSite && scope.site != nil {
		if _, ok := row[schema.ColSite]; !ok {
			row[schema.ColSite] = *scope.site
		}
	}
	if rs.HasLanguage && scope.language != "" {
		if _, ok := row[schema.ColLanguage]; !ok {
			row[schema.ColLanguage] = scope.language
		}
	}
	if rs.HasSubdomain && scope.subdomain != nil {
		if _, ok := row[schema.ColSubdomain]; !ok {
			row[schema.ColSubdomain] = *scope.subdomain
		}
	}
}
