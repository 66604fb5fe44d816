// Package response provides helpers for writing consistent HTTP responses.
//
// The booking form endpoints answer with plain text or small inline HTML
// fragments; the read-only /api endpoints answer with JSON. Rather than
// repeating "set header, set status, write body" in every handler, we
// centralise it here.
package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for JSON error cases:
//
//	{ "status": "error", "error": "appointment not found" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes body as text/plain.
func WriteText(w http.ResponseWriter, status int, body string) error {
	return write(w, "text/plain; charset=utf-8", status, body)
}

// WriteHTML writes body as text/html. Callers escape any user input
// embedded in body.
func WriteHTML(w http.ResponseWriter, status int, body string) error {
	return write(w, "text/html; charset=utf-8", status, body)
}

func write(w http.ResponseWriter, contentType string, status int, body string) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, err := io.WriteString(w, body)
	return err
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationMessage converts validator.FieldError values into one
// human-readable sentence, e.g.
//
//	field Name is required, field Service is required
//
// The form endpoints answer with fixed texts, so this is what ends up in
// the logs.
// ─────────────────────────────────────────────────────────────────────────────
func ValidationMessage(errs validator.ValidationErrors) string {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "required_without_all":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required when %s are empty", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return strings.Join(errMessages, ", ")
}
