package handler

import (
	"net/http"

	"github.com/ironholdgame/server/internal/auth"
	"github.com/ironholdgame/server/internal/service"
)

// ActionHandler handles in-game action and turn endpoints.
type ActionHandler struct {
	actionSvc *service.ActionService
	turnSvc   *service.TurnService
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(actionSvc *service.ActionService, turnSvc *service.TurnService) *ActionHandler {
	return &ActionHandler{actionSvc: actionSvc, turnSvc: turnSvc}
}

// Move handles POST /api/v1/games/{id}/actions/move
func (h *ActionHandler) Move(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var cmd service.MoveCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.Move(r.Context(), gameID, userID, clientKey(r), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttackUnit handles POST /api/v1/games/{id}/actions/attack-unit
func (h *ActionHandler) AttackUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var cmd service.AttackUnitCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.AttackUnit(r.Context(), gameID, userID, clientKey(r), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttackCity handles POST /api/v1/games/{id}/actions/attack-city
func (h *ActionHandler) AttackCity(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var cmd service.AttackCityCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.AttackCity(r.Context(), gameID, userID, clientKey(r), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SpawnUnit handles POST /api/v1/games/{id}/actions/spawn
func (h *ActionHandler) SpawnUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var cmd service.SpawnCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.SpawnUnit(r.Context(), gameID, userID, clientKey(r), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExpandTerritory handles POST /api/v1/games/{id}/actions/expand
func (h *ActionHandler) ExpandTerritory(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var cmd service.ExpandCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.ExpandTerritory(r.Context(), gameID, userID, clientKey(r), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EndTurn handles POST /api/v1/games/{id}/end-turn
func (h *ActionHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	result, err := h.turnSvc.EndTurn(r.Context(), gameID, userID, clientKey(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
