package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/logging"
)

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeError maps service errors onto HTTP statuses. Anything unclassified
// is logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		jsonError(w, validationMessage(err), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		jsonError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrConflict):
		jsonError(w, "already exists", http.StatusConflict)
	case errors.Is(err, auth.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	default:
		logging.Err(log.Ctx(r.Context()).Error(), err).
			Str("path", r.URL.Path).
			Msg("request failed")
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// validationMessage strips the sentinel prefix so clients see only the
// field message.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, auth.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(auth.ErrValidation.Error())+2:]
	}
	return msg
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
