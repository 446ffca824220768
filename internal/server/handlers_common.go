package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"citytwin/internal/store"
)

type APIError struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

const errInvalidPayload = "invalid payload"

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, details interface{}) {
	s.writeJSON(w, status, APIError{Error: message, Details: details})
}

func (s *Server) decodeAndValidate(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// orNewID keeps a caller-supplied id or mints one for ad-hoc objects.
func orNewID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.New().String()
}

// idParam extracts a non-empty URL parameter or reports false.
func idParam(r *http.Request, key string) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	return raw, raw != ""
}

// writeStoreError maps store sentinel errors to HTTP statuses; everything
// else is a 500 with the detail kept out of the response body.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, notFoundMsg, nil)
	case errors.Is(err, store.ErrConflict):
		s.writeError(w, http.StatusConflict, "resource already exists", nil)
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("store operation failed")
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
