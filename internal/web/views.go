package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ViewMap resolves request paths to view names by matching them against a
// chi routing tree. Register patterns with names; the view metadata backend
// then keys its records by those names, so moving a page to a new URL does
// not orphan its metadata.
type ViewMap struct {
	mux   *chi.Mux
	names map[string]string
}

// NewViewMap creates an empty view map.
func NewViewMap() *ViewMap {
	return &ViewMap{
		mux:   chi.NewRouter(),
		names: make(map[string]string),
	}
}

// Add registers a route pattern under a view name. Patterns use chi
// syntax, so "/products/{slug}" matches any product page.
func (v *ViewMap) Add(name, pattern string) *ViewMap {
	v.names[pattern] = name
	// The handler is never invoked; chi only supplies the route matcher.
	v.mux.Get(pattern, func(http.ResponseWriter, *http.Request) {})
	return v
}

// ResolveToName returns the view name whose pattern matches path, or ""
// when no registered pattern matches.
func (v *ViewMap) ResolveToName(path string) string {
	rctx := chi.NewRouteContext()
	if !v.mux.Match(rctx, http.MethodGet, path) {
		// Retry without a trailing slash; patterns are registered in
		// unslashed form.
		trimmed := strings.TrimSuffix(path, "/")
		if trimmed == path || trimmed == "" {
			return ""
		}
		rctx = chi.NewRouteContext()
		if !v.mux.Match(rctx, http.MethodGet, trimmed) {
			return ""
		}
	}
	return v.names[rctx.RoutePattern()]
}
