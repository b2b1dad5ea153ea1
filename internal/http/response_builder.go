// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from core error kinds to status codes and error bodies.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"finbot/internal/core"
	"finbot/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value that is encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the response. Encoding failures after the header has been
// sent can only be logged.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", log.FieldError, err)
		b.statusCode = http.StatusInternalServerError
		payload = []byte(`{"error":{"type":"internal_error","message":"internal server error"}}`)
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, r *http.Request, v any) {
	NewJSONResponse().Body(v).Write(w, r)
}

// Acknowledge writes {"ok": true}.
func Acknowledge(w http.ResponseWriter, r *http.Request) {
	OK(w, r, map[string]bool{"ok": true})
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, errorType, message, field string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: ErrorDetail{Type: errorType, Message: message, Field: field}})
}

// classify maps an error onto its status code and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrForeignKey):
		return http.StatusUnprocessableEntity, log.ErrorTypeForeignKey
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// WriteError maps err to its response. Unclassified errors are logged and
// reported with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, errorType := classify(err)

	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, operationOf(r), log.NewFields().WithErrorType(errorType))
		ErrorResponse(status, errorType, "internal server error", "").Write(w, r)
		return
	}

	message, field := err.Error(), ""
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		message, field = coreErr.Error(), coreErr.Field
	}
	ErrorResponse(status, errorType, message, field).Write(w, r)
}

// operationOf names the operation a request performs, for error logs.
func operationOf(r *http.Request) string {
	switch r.Method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPatch:
		return log.OpUpdate
	case http.MethodDelete:
		return log.OpDelete
	}
	if r.PathValue("id") == "" && r.PathValue("telegram_id") == "" {
		return log.OpList
	}
	if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/expenses") {
		return log.OpList
	}
	return log.OpRead
}
