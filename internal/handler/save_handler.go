package handler

import (
	"net/http"

	"github.com/ironholdgame/server/internal/auth"
	"github.com/ironholdgame/server/internal/service"
)

// SaveHandler handles manual save slot endpoints.
type SaveHandler struct {
	saveSvc *service.SaveService
}

// NewSaveHandler creates a SaveHandler.
func NewSaveHandler(saveSvc *service.SaveService) *SaveHandler {
	return &SaveHandler{saveSvc: saveSvc}
}

// CreateSave handles POST /api/v1/games/{id}/saves
func (h *SaveHandler) CreateSave(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Slot  int    `json:"slot"`
		Label string `json:"label,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	save, err := h.saveSvc.ManualSave(r.Context(), gameID, userID, req.Slot, req.Label)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, save)
}

// ListSaves handles GET /api/v1/games/{id}/saves
func (h *SaveHandler) ListSaves(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	saves, err := h.saveSvc.ListSaves(r.Context(), gameID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if saves == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, saves)
}

// LoadSave handles POST /api/v1/games/{id}/saves/{saveId}/load
func (h *SaveHandler) LoadSave(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	saveID := r.PathValue("saveId")
	userID := auth.UserIDFromContext(r.Context())

	snap, err := h.saveSvc.LoadSave(r.Context(), gameID, userID, saveID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteSave handles DELETE /api/v1/games/{id}/saves/{saveId}
func (h *SaveHandler) DeleteSave(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	saveID := r.PathValue("saveId")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.saveSvc.DeleteSave(r.Context(), gameID, userID, saveID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
