package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"canteen/internal/domain"
)

// WriteJSON отдаёт JSON с нужным статусом
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem writes a simplified RFC7807 problem document.
func WriteProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeProblem(w, code, typ, detail, nil)
}

// writeProblem adds ext as RFC7807 extension members. The standard members win
// on a name clash.
func writeProblem(w http.ResponseWriter, code int, typ, detail string, ext map[string]any) {
	resp := make(map[string]any, len(ext)+4)
	for k, v := range ext {
		resp[k] = v
	}
	resp["type"] = typ
	resp["title"] = http.StatusText(code)
	resp["status"] = code
	resp["detail"] = detail
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// StatusFor maps a domain error to its HTTP status and problem type.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// WriteError writes err as a problem. Store and other unexpected errors are
// reported as a bare "internal error" so their text never reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWith(w, err, nil)
}

// WriteErrorWith is WriteError with extension members, for failures that carry
// a result the client still needs to see.
func WriteErrorWith(w http.ResponseWriter, err error, ext map[string]any) {
	code, typ := StatusFor(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		detail = "internal error"
	}
	writeProblem(w, code, typ, detail, ext)
}

// DecodeJSON decodes the request body into v, reporting failures as validation errors.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	return nil
}

// ParseID parses a positive int64 path parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, s)
	}
	return id, nil
}
