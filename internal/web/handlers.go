// Package web exposes the metadata engine over HTTP: read endpoints for
// resolved metadata, a write endpoint for records, and the middleware
// stack around them.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seometa/seometa/internal/meta"
	"github.com/seometa/seometa/internal/meta/backend"
	"github.com/seometa/seometa/internal/meta/store"
)

// API holds the dependencies of the HTTP handlers.
type API struct {
	Engine *meta.Engine
	Logger *zap.Logger

	// Auth guards the record-writing route. Optional; without it the
	// write route is open, which is only sensible behind a trusted proxy.
	Auth *TokenAuth

	// Limiter throttles all API routes. Optional.
	Limiter *RateLimiter
}

// Router builds the API routing tree with the full middleware stack.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(a.Logger))
	r.Use(Recover(a.Logger))
	if a.Limiter != nil {
		r.Use(RateLimit(a.Limiter))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/metadata", a.handleGetMetadata)
		r.Get("/backends", a.handleListBackends)

		write := r.With()
		if a.Auth != nil {
			write = r.With(a.Auth.Middleware)
		}
		write.Put("/records/{group}/{backend}", a.handlePutRecord)
	})

	return r
}

type metadataResponse struct {
	Group   string         `json:"group"`
	Matched int            `json:"matched"`
	Values  map[string]any `json:"values"`
	Head    string         `json:"head"`
}

// handleGetMetadata resolves metadata for a path. Scope comes from query
// parameters: site, language and subdomain.
func (a *API) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	group := q.Get("group")

	opts, err := scopeOptions(q.Get("site"), q.Get("language"), q.Get("subdomain"), q.Has("subdomain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resolved, err := a.Engine.GetMetadata(r.Context(), path, group, nil, opts...)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	def, err := a.Engine.Definition(group)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, metadataResponse{
		Group:   def.Name,
		Matched: len(resolved.Records()),
		Values:  resolved.Values(),
		Head:    resolved.HeadHTML(),
	})
}

type backendInfo struct {
	Name        string `json:"name"`
	VerboseName string `json:"verbose_name"`
}

// handleListBackends reports the active backends in matching order.
func (a *API) handleListBackends(w http.ResponseWriter, r *http.Request) {
	backends := a.Engine.Backends()
	out := make([]backendInfo, 0, len(backends))
	for _, b := range backends {
		out = append(out, backendInfo{Name: b.Name(), VerboseName: b.VerboseName()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"backends": out})
}

type putRecordRequest struct {
	Values    map[string]any `json:"values"`
	Site      *int64         `json:"site"`
	Language  string         `json:"language"`
	Subdomain *string        `json:"subdomain"`
}

// handlePutRecord stores a metadata record.
func (a *API) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	backendName := chi.URLParam(r, "backend")

	var req putRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values are required")
		return
	}

	var opts []meta.Option
	if req.Site != nil {
		opts = append(opts, meta.WithSite(*req.Site))
	}
	if req.Language != "" {
		opts = append(opts, meta.WithLanguage(req.Language))
	}
	if req.Subdomain != nil {
		opts = append(opts, meta.WithSubdomain(*req.Subdomain))
	}

	res, err := a.Engine.PutRecord(r.Context(), group, backendName, req.Values, opts...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "a record with these keys already exists")
			return
		}
		a.writeEngineError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Saved {
		// Duplicate discarded by the backend's conflict policy.
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"saved": res.Saved})
}

func scopeOptions(site, language, subdomain string, hasSubdomain bool) ([]meta.Option, error) {
	var opts []meta.Option
	if site != "" {
		id, err := strconv.ParseInt(site, 10, 64)
		if err != nil {
			return nil, errors.New("site must be an integer")
		}
		opts = append(opts, meta.WithSite(id))
	}
	if language != "" {
		opts = append(opts, meta.WithLanguage(language))
	}
	if hasSubdomain {
		opts = append(opts, meta.WithSubdomain(subdomain))
	}
	return opts, nil
}

func (a *API) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var uge *meta.UnknownGroupError
	var tue *meta.TargetUnresolvableError
	var ube *backend.UnknownBackendError
	switch {
	case errors.As(err, &uge):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &tue):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ube):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		a.Logger.Error("request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
