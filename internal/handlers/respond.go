package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"familietask/internal/apperr"
)

// writeJSON encodes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError maps a service error to an HTTP status and a JSON body
// of the form {"message": "..."}. Internal errors are logged with the
// underlying cause; the client only sees a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusForKind(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"message": apperr.MessageOf(err)})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthRequired:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}

// pathID extracts a numeric path parameter registered as {name} on the mux.
func pathID(r *http.Request, name string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(r.PathValue(name), "%d", &id); err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindValidation, "invalid "+name)
	}
	return id, nil
}
