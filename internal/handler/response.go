package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/service"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service-layer errors to HTTP responses. Rule
// violations carry a machine-readable code so clients can react without
// parsing the message text.
func writeServiceError(w http.ResponseWriter, err error) {
	if re := skirmish.IsRuleError(err); re != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": re.Message,
			"code":  re.Code,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound) || errors.Is(err, service.ErrSaveNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotYourGame):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidSlot) || errors.Is(err, service.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrTurnBusy) || errors.Is(err, service.ErrNotYourTurn) || errors.Is(err, service.ErrGameFinished):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unhandled service error")
	}
	writeError(w, status, err.Error())
}

// clientKey extracts the idempotency key, if the client sent one.
func clientKey(r *http.Request) string {
	return r.Header.Get("X-Client-Key")
}
