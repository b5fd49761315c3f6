package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.WithError(err).Error("Failed to encode response")
		}
	}
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing_item_ids,omitempty"`
}

// writeDomainError maps engine errors onto HTTP status codes: not-found
// sentinels to 404, validation failures to 400, lifecycle violations and
// reference conflicts to 409. Anything unrecognized is a 500 with a generic
// body so internals never leak to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case pm.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case pm.IsStateViolation(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, pm.ErrTemplateInUse), errors.Is(err, pm.ErrExecutionExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case pm.IsValidation(err):
		var ri *pm.RequiredItemsIncompleteError
		if errors.As(err, &ri) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Missing: ri.MissingItemIDs})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).Error("Unhandled error in request")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeBody parses the request body into v, rejecting malformed JSON.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}
