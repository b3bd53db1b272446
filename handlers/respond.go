package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"breakdesk/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the service error taxonomy onto HTTP statuses.
// Eligibility failures keep the reason text verbatim so the client can
// render it.
func writeError(w http.ResponseWriter, err error) {
	var eligibility *services.EligibilityError
	if errors.As(err, &eligibility) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: "break not allowed",
			Reason:  eligibility.Reason,
		})
		return
	}

	var authz *services.AuthorizationError
	if errors.As(err, &authz) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Message: authz.Message})
		return
	}

	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: conflict.Message})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: notFound.Message})
		return
	}

	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: message})
}
