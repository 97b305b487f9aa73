package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
)

// maxBodyBytes caps JSON request bodies. Feedback text is limited far below this.
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status. Feedback lists change on every
// mutation, so nothing is cacheable.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// RequireMethod reports whether r uses one of methods, answering 405 with
// an Allow header otherwise.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	return false
}

// DecodeJSON decodes the request body into v. Malformed bodies get 400 and
// oversized ones 413; either way the response is already written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	WriteError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
	return false
}

// resourceID returns the single path segment after prefix. ok is false when
// the path is outside prefix or has further segments.
func resourceID(path, prefix string) (id string, ok bool) {
	rest, found := strings.CutPrefix(path, prefix)
	if !found || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
