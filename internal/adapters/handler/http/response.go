package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	User domain.PublicUser `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Path:       r.URL.Path,
	})
}

// writeDomainError maps an error from the core to a status code by its kind.
// Anything untyped is logged and reported as a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	default:
		loggerFrom(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := err.Error()
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	writeError(w, r, status, message)
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.NewError(domain.ErrInvalidInput, "Request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return domain.NewError(domain.ErrInvalidInput, "Request body contains malformed JSON")
		case errors.As(err, &typeErr):
			return domain.NewError(domain.ErrInvalidInput, fmt.Sprintf("%s has an invalid type", typeErr.Field))
		case errors.As(err, &maxErr):
			return domain.NewError(domain.ErrInvalidInput, "Request body is too large")
		default:
			// json reports unknown fields as `json: unknown field "x"`.
			return domain.NewError(domain.ErrInvalidInput, err.Error())
		}
	}

	if dec.More() {
		return domain.NewError(domain.ErrInvalidInput, "Request body must contain a single JSON object")
	}
	return nil
}
