package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

func respondJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError converts a domain error into the response envelope. Nothing
// leaves this boundary unconverted: unexpected errors become a generic 500
// and the cause stays in the log.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var authErr *models.AuthorizationError
	var notFoundErr *models.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": validationErr.Message})
	case errors.As(err, &authErr):
		respondJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "error": authErr.Message})
	case errors.As(err, &notFoundErr):
		respondJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": notFoundErr.Error()})
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Internal server error"})
	}
}
