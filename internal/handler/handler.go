// Package handler provides HTTP request handlers.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var errInvalidBody = errors.New("invalid request body")

// Handler serves the fallback routes.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON object into dst. Both the wrapped form
// {"<root>": {...}} and the bare form {...} are accepted.
func decodeBody(r *http.Request, root string, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errInvalidBody
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return errInvalidBody
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errInvalidBody
	}
	if nested, ok := fields[root]; ok {
		nested = bytes.TrimSpace(nested)
		if len(nested) == 0 || nested[0] != '{' {
			return errInvalidBody
		}
		body = nested
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// parseID reads the numeric {id} route parameter.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
