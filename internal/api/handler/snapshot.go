package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-feeds/internal/api/respond"
	"github.com/albapepper/scoracle-feeds/internal/cache"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
)

// GetCurrentSnapshot returns persisted datasets without any network calls.
// It reads the store on every request so writes from other processes, such
// as the ingest CLI, show up immediately; the ETag only covers the documents.
// @Summary Get current snapshot
// @Description Returns the stored document for each requested dataset, or its static fallback when nothing is stored. Never contacts upstream providers.
// @Tags snapshot
// @Produce json
// @Param datasets query string false "Comma separated kinds or groups (f1, football, all)" default(f1)
// @Success 200 {object} resolver.Snapshot
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /snapshot [get]
func (h *Handler) GetCurrentSnapshot(w http.ResponseWriter, r *http.Request) {
	kinds, ok := parseDatasets(w, r.URL.Query().Get("datasets"))
	if !ok {
		return
	}
	snap, err := h.resolver.GetCurrentSnapshot(r.Context(), kinds)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	etag, err := documentsETag(snap)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	respond.WriteJSONRevalidate(w, raw, etag)
}

// documentsETag hashes a snapshot without its resolution time.
func documentsETag(s resolver.Snapshot) (string, error) {
	b, err := json.Marshal(struct {
		Datasets interface{} `json:"datasets"`
		Meta     interface{} `json:"meta"`
		Override bool        `json:"override"`
	}{s.Datasets, s.Meta, s.Override})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return cache.ComputeETag(b), nil
}

// PreviewSnapshot returns manual data when every requested dataset is stored,
// otherwise freshly resolved data, which is persisted as it resolves.
// @Summary Preview live data
// @Description Manual-priority read: stored documents win only when every requested dataset is stored; otherwise every dataset is resolved through its fallback chain and written to the snapshot store.
// @Tags snapshot
// @Produce json
// @Param datasets query string false "Comma separated kinds or groups (f1, football, all)" default(f1)
// @Success 200 {object} resolver.Snapshot
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /snapshot/preview [get]
func (h *Handler) PreviewSnapshot(w http.ResponseWriter, r *http.Request) {
	kinds, ok := parseDatasets(w, r.URL.Query().Get("datasets"))
	if !ok {
		return
	}
	h.serveCached(w, r, "snapshot:preview:"+joinKinds(kinds), kinds, func(ctx context.Context) ([]byte, error) {
		snap, err := h.resolver.PreviewLiveData(ctx, kinds)
		if err != nil && !errors.Is(err, resolver.ErrPersist) {
			return nil, err
		}
		raw, merr := json.Marshal(snap)
		if merr != nil {
			return nil, merr
		}
		return raw, err
	})
}

// GetDataset returns one dataset's canonical document.
// @Summary Get dataset
// @Description Returns the canonical document for one dataset kind, preferring a stored override.
// @Tags datasets
// @Produce json
// @Param kind path string true "Dataset kind" Enums(driver-standings, constructor-standings, recent-race, squad, league-table, recent-results, upcoming-fixtures, team-info)
// @Success 200 {object} interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /datasets/{kind} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	kind, err := dataset.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_DATASET", err.Error())
		return
	}
	kinds := []dataset.Kind{kind}
	h.serveCached(w, r, "dataset:"+string(kind), kinds, func(ctx context.Context) ([]byte, error) {
		snap, err := h.resolver.GetSnapshot(ctx, kinds)
		if err != nil && !errors.Is(err, resolver.ErrPersist) {
			return nil, err
		}
		return snap.Datasets[kind], err
	})
}

// DatasetInfo describes one kind's chain for the datasets listing.
type DatasetInfo struct {
	Kind    dataset.Kind `json:"kind"`
	Sources []string     `json:"sources"`
	Stored  bool         `json:"stored"`
}

// ListDatasets lists every dataset kind with its chain.
// @Summary List datasets
// @Description Lists dataset kinds, the sources of each chain in invocation order, and whether a stored document exists.
// @Tags datasets
// @Produce json
// @Success 200 {array} DatasetInfo
// @Router /datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	stored := make(map[dataset.Kind]bool)
	kinds, err := h.resolver.StoredKinds(r.Context())
	if err != nil {
		h.logger.Warn("Listing stored datasets failed", "error", err)
	}
	for _, k := range kinds {
		stored[k] = true
	}

	sources := h.resolver.Sources()
	out := make([]DatasetInfo, 0, len(sources))
	for _, k := range dataset.All() {
		if s, ok := sources[k]; ok {
			out = append(out, DatasetInfo{Kind: k, Sources: s, Stored: stored[k]})
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, out)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// serveCached answers from the cache when possible, otherwise builds the
// body and caches it tagged with kinds. A body built alongside ErrPersist
// is served but not cached.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, kinds []dataset.Kind,
	build func(ctx context.Context) ([]byte, error)) {
	ttl := h.ttl()

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	raw, err := build(r.Context())
	if errors.Is(err, resolver.ErrPersist) && raw != nil {
		h.logger.Warn("Serving resolved data that was not persisted", "key", key, "error", err)
		respond.WriteJSONObject(w, http.StatusOK, json.RawMessage(raw))
		return
	}
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	etag := h.cache.Set(key, raw, ttl, dataset.Strings(kinds)...)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, raw, etag, ttl, false)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrUnknownKind):
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_DATASET", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.WriteError(w, http.StatusServiceUnavailable, "RESOLVE_CANCELLED", "Request cancelled before datasets resolved")
	default:
		h.logger.Error("Resolving datasets failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "RESOLVE_FAILED", "Failed to resolve datasets", err.Error())
	}
}

func parseDatasets(w http.ResponseWriter, raw string) ([]dataset.Kind, bool) {
	kinds, err := dataset.ParseList(raw)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_DATASETS",
			fmt.Sprintf("datasets must be kinds or groups (%s, %s, %s)", dataset.GroupF1, dataset.GroupFootball, dataset.GroupAll),
			err.Error())
		return nil, false
	}
	return kinds, true
}

func joinKinds(kinds []dataset.Kind) string {
	return strings.Join(dataset.Strings(kinds), ",")
}

// snapshotOrigins is used by admin responses to summarise where data came from.
func snapshotOrigins(s resolver.Snapshot) map[string]int {
	out := make(map[string]int)
	for _, m := range s.Meta {
		out[string(m.Origin)]++
	}
	return out
}
