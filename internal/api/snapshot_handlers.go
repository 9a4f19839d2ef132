package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/storage"
)

// HandleSaveSnapshot persists the current session as a named snapshot.
//
//	POST /api/snapshots {"name": "march-review"}
func (h *Handlers) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	snap := storage.NewSnapshot(req.Name, h.Dataset())
	if err := h.store.Save(r.Context(), snap); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":   snap.ID,
		"name": snap.Name,
	})
}

// HandleListSnapshots lists saved snapshots, newest first.
//
//	GET /api/snapshots
func (h *Handlers) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	metas, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"snapshots": metas})
}

// HandleGetSnapshot returns one snapshot with its full record payload.
//
//	GET /api/snapshots/{id}
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleRestoreSnapshot replaces the current session with a snapshot's
// records.
//
//	POST /api/snapshots/{id}/restore
func (h *Handlers) HandleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.ReplaceDataset(r, engine.NewDataset(snap.Campaigns, snap.Flows, snap.Subscribers))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":          snap.ID,
		"name":        snap.Name,
		"campaigns":   len(snap.Campaigns),
		"flows":       len(snap.Flows),
		"subscribers": len(snap.Subscribers),
	})
}

// HandleDeleteSnapshot removes a local snapshot.
//
//	DELETE /api/snapshots/{id}
func (h *Handlers) HandleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
