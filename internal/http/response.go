package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cctracker/internal/core"
	"cctracker/internal/log"
)

// HeaderPersistenceWarning carries the storage failure message when a change
// was applied in memory but could not be saved.
const HeaderPersistenceWarning = "X-Persistence-Warning"

// envelope wraps every /api response body.
type envelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes data in the envelope. A non-empty warning is also sent as
// a header so clients that ignore bodies still see it.
func writeData(w http.ResponseWriter, status int, data any, warning string) {
	if warning != "" {
		w.Header().Set(HeaderPersistenceWarning, headerSafe(warning))
	}
	writeJSON(w, status, envelope{Data: data, Warning: warning})
}

// respond finishes a mutation. A persistence failure still reports success
// because the change is in effect; any other error is mapped by writeError.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil && !core.IsPersistence(err) {
		s.writeError(w, r, err)
		return
	}
	warning := ""
	if err != nil {
		warning = err.Error()
	}
	writeData(w, status, data, warning)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrConfirmationRequired):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Field: fieldOf(err)})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Err.Error(), Field: ve.Field})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: what + " not found"})
}

func fieldOf(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return ' '
		}
		return r
	}, s)
}
