// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from service errors to status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/core"
	applog "contas/internal/log"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Error codes carried in error bodies.
const (
	CodeBadRequest  = "bad_request"
	CodeNotFound    = "not_found"
	CodeValidation  = "validation_failed"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal_error"
	CodeUnavailable = "unavailable"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
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

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.data)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(ctx context.Context, statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(errorBody{
			Error:     errorDetail{Code: code, Message: message},
			RequestID: trace.GetRequestID(ctx),
		})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusBadRequest, CodeBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusUnprocessableEntity, CodeValidation, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusNotFound, CodeNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(ctx context.Context) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusInternalServerError, CodeInternal, "internal error")
}

// ServiceError maps err to a response: not found is 404, validation and
// obligation configuration errors are 422, everything else is a logged 500.
func ServiceError(ctx context.Context, err error) *JSONResponseBuilder {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(ctx, err.Error())
	case errors.As(err, &ve),
		errors.Is(err, core.ErrConfiguration),
		errors.Is(err, core.ErrInvalidDueDay):
		return UnprocessableEntityError(ctx, err.Error())
	default:
		applog.FromContext(ctx).ErrorContext(ctx, "Request failed", applog.FieldError, err.Error())
		return InternalServerError(ctx)
	}
}
