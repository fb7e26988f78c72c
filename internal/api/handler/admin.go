package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/albapepper/scoracle-feeds/internal/api/respond"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
)

// AdminResponse is returned by every admin endpoint. Data is present even
// when the snapshot could not be persisted.
type AdminResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *resolver.Snapshot `json:"data,omitempty"`
	Origins map[string]int     `json:"origins,omitempty"`
	Error   *respond.ErrorBody `json:"error,omitempty"`
}

// UpdateRequest is the body of POST /admin/update.
type UpdateRequest struct {
	Action   string `json:"action" enums:"preview,save"`
	Datasets string `json:"datasets,omitempty" example:"f1"`
}

// Refresh resolves every requested dataset live and persists the results.
// @Summary Refresh and save
// @Description Ignores stored documents, runs every requested chain concurrently and writes each result to the snapshot store. A store failure still returns the resolved data with success=false.
// @Tags admin
// @Produce json
// @Param datasets query string false "Comma separated kinds or groups (f1, football, all)" default(f1)
// @Success 200 {object} AdminResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} AdminResponse
// @Router /admin/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	kinds, ok := parseDatasets(w, r.URL.Query().Get("datasets"))
	if !ok {
		return
	}
	h.refresh(w, r, kinds)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request, kinds []dataset.Kind) {
	snap, err := h.resolver.RefreshAndSave(r.Context(), kinds)
	h.writeSaved(w, snap, err, "Data updated and saved successfully")
}

// Save writes operator-supplied documents straight to the snapshot store.
// @Summary Save manual snapshot
// @Description Body maps dataset kinds to canonical documents. Every document is validated before anything is written; null entries are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "kind to document"
// @Success 200 {object} AdminResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} AdminResponse
// @Router /admin/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Body must be a JSON object of dataset documents", err.Error())
		return
	}
	docs, err := dataset.ParseDocuments(body)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_DATASETS", "Unknown dataset in body", err.Error())
		return
	}

	snap, err := h.resolver.SaveManual(r.Context(), docs)
	if errors.Is(err, resolver.ErrInvalid) {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SNAPSHOT", "Snapshot rejected, nothing was saved", err.Error())
		return
	}
	h.writeSaved(w, snap, err, "Data saved successfully")
}

// Update is the single admin entry point used by the editing UI.
// @Summary Preview or save
// @Description action=preview returns manual-priority data, persisting anything it had to resolve live; action=save refreshes and persists.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body UpdateRequest true "action and datasets"
// @Success 200 {object} AdminResponse
// @Failure 400 {object} AdminResponse
// @Failure 500 {object} AdminResponse
// @Router /admin/update [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Body must be a JSON object", err.Error())
		return
	}
	kinds, ok := parseDatasets(w, req.Datasets)
	if !ok {
		return
	}

	switch strings.ToLower(req.Action) {
	case "preview":
		snap, err := h.resolver.PreviewLiveData(r.Context(), kinds)
		h.writeSaved(w, snap, err, "Data retrieved with priority (manual > live sources > fallback)")
	case "save":
		h.refresh(w, r, kinds)
	default:
		respond.WriteJSONObject(w, http.StatusBadRequest, AdminResponse{
			Message: "Invalid action. Use 'preview' or 'save'",
		})
	}
}

// CurrentData returns the persisted snapshot for the editing UI.
// @Summary Current data
// @Description Same as GET /snapshot, wrapped in the admin response shape.
// @Tags admin
// @Produce json
// @Param datasets query string false "Comma separated kinds or groups (f1, football, all)" default(f1)
// @Success 200 {object} AdminResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /admin/update [get]
func (h *Handler) CurrentData(w http.ResponseWriter, r *http.Request) {
	kinds, ok := parseDatasets(w, r.URL.Query().Get("datasets"))
	if !ok {
		return
	}
	snap, err := h.resolver.GetCurrentSnapshot(r.Context(), kinds)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, AdminResponse{Success: true, Message: "Current data", Data: &snap, Origins: snapshotOrigins(snap)})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func (h *Handler) writeSaved(w http.ResponseWriter, snap resolver.Snapshot, err error, message string) {
	switch {
	case err == nil:
		respond.WriteJSONObject(w, http.StatusOK, AdminResponse{
			Success: true, Message: message, Data: &snap, Origins: snapshotOrigins(snap),
		})
	case errors.Is(err, resolver.ErrPersist):
		respond.WriteJSONObject(w, http.StatusInternalServerError, AdminResponse{
			Message: "Data resolved but not saved",
			Data:    &snap,
			Origins: snapshotOrigins(snap),
			Error:   &respond.ErrorBody{Code: "SNAPSHOT_NOT_SAVED", Message: "Snapshot store write failed", Detail: err.Error()},
		})
	default:
		h.writeResolveError(w, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
