// Package httpapi is the HTTP boundary: routing, JSON codecs, cookie
// transport for session tokens, and the translation of service errors to
// status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grouptab/grouptab/internal/common"
)

// maxBodyBytes caps request bodies; nothing the API accepts is large.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// decodeJSON strictly decodes the request body into dst. Unknown fields,
// trailing garbage, and oversized bodies are all rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", common.ErrInvalidArgument)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps domain sentinels to HTTP statuses. Anything unmatched
// is a 500 with a generic body; internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		status, msg = http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrLoginFailed):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrInvalidArgument):
		status, msg = http.StatusBadRequest, "invalid argument"
	}

	respondJSON(w, status, errorResponse{Error: msg})
}
