package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geonames/gazetteer/internal/gazetteer"
	"github.com/geonames/gazetteer/internal/gazetteer/gazcache"
	"github.com/geonames/gazetteer/internal/middleware"
)

type handlers struct {
	lazy  *gazetteer.LazyIndex
	cache *gazcache.Cache
}

func (h *handlers) dataSource() (*gazetteer.DataSource, error) {
	idx, err := h.lazy.Get()
	if err != nil {
		return nil, err
	}
	return gazetteer.NewDataSource(idx), nil
}

// search returns a handler for GET /v1/<resource>?name=... that runs
// searchFn against the built index, optionally going through the Redis
// lookup cache first.
func (h *handlers) search(searchFn func(*gazetteer.DataSource, string) map[int64]gazetteer.Location, resolution gazetteer.Resolution) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			respondError(w, r, http.StatusBadRequest, "name query parameter is required")
			return
		}

		ctx := r.Context()

		if h.cache != nil {
			if cached, err := h.cache.GetByName(ctx, name, resolution); err == nil && cached != nil {
				respondJSON(w, http.StatusOK, cached)
				return
			}
		}

		ds, err := h.dataSource()
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, "index unavailable: "+err.Error())
			return
		}

		result := searchFn(ds, name)

		if h.cache != nil {
			_ = h.cache.SetByName(ctx, name, resolution, result)
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func (h *handlers) getByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "id must be numeric")
		return
	}

	ctx := r.Context()

	if h.cache != nil {
		if loc, found, err := h.cache.GetByID(ctx, id); err == nil && found {
			respondJSON(w, http.StatusOK, loc)
			return
		}
	}

	ds, err := h.dataSource()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "index unavailable: "+err.Error())
		return
	}

	loc, found := ds.GetLocationByID(id)
	if !found {
		respondError(w, r, http.StatusNotFound, "location not found")
		return
	}

	if h.cache != nil {
		_ = h.cache.SetByID(ctx, id, loc)
	}

	respondJSON(w, http.StatusOK, loc)
}

// respondJSON relies on the ContentType middleware wired into the /v1
// route group to set the response's media type.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body tagged with the request's
// X-Request-ID so a client can correlate a failure report with the
// matching server-side log line from Logger/LogFailedLookups.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error":      message,
		"request_id": middleware.GetRequestIDOrGenerate(r.Context()),
	})
}
