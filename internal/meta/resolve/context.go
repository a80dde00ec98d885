// Package resolve implements the value-resolution engine: given a matched
// metadata record and a requested field name, it computes the final value
// through the stored-value / populate-from / attribute precedence chain and
// a final template-substitution pass.
package resolve

import (
	"github.com/seometa/seometa/internal/meta/schema"
)

// Context is the mutable per-resolution state threaded through sequential
// backend matches. A backend may record what it matched so that later
// backends can use it; the modelinstance backend sets ContentType and
// ModelInstance, which the model backend reads.
type Context struct {
	// ViewContext is the ambient rendering context supplied by the caller,
	// made available to template substitution.
	ViewContext map[string]any

	// ContentType is the content-type name of the matched instance, set by
	// the modelinstance backend for the model backend.
	ContentType string

	// ModelInstance is the record matched by the modelinstance backend.
	ModelInstance *schema.Record
}

// NewContext creates a resolution context. The caller's context map may
// carry a "view_context" sub-map; when present it becomes the ambient
// rendering context, matching the template-tag calling convention.
func NewContext(callerCtx map[string]any) *Context {
	rc := &Context{}
	if callerCtx == nil {
		return rc
	}
	if vc, ok := callerCtx["view_context"].(map[string]any); ok {
		rc.ViewContext = vc
	} else {
		rc.ViewContext = callerCtx
	}
	if ct, ok := callerCtx["content_type"].(string); ok {
		rc.ContentType = ct
	}
	return rc
}

// ViewObject returns the "object" entry of the view context, the
// conventional spot where a detail view exposes its subject.
func (rc *Context) ViewObject() any {
	if rc.ViewContext == nil {
		return nil
	}
	return rc.ViewContext["object"]
}
