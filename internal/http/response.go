package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"expenses/internal/core"
	"expenses/internal/log"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status. Caller input problems are 400 with the
// error text; anything else is logged and reported as 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, errBadRequest) || core.IsValidation(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	log.FromContext(r.Context()).LogError(r.Context(), "Request failed", err, op, log.NewFields())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error: " + op + " failed"})
}

// decodeJSON reads one JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
