// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"mybalance/internal/balance"
	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/log"
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

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a standard {"message": ...} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(messageBody{Message: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError creates a 429 response with a retry hint.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
		Header("Retry-After", "60")
}

var (
	validationErrors = []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrEmptyCategoryName,
		core.ErrCategoryNameTooLong,
		ledger.ErrUnknownCategory,
	}
	conflictErrors = []error{
		ledger.ErrDuplicateTransaction,
		ledger.ErrDuplicateCategory,
		ledger.ErrCategoryInUse,
	}
)

// errorStatus maps err to a status code and a client-facing message.
// Wrapped store detail never reaches the client.
func errorStatus(err error) (int, string) {
	if errors.Is(err, ledger.ErrNotFound) {
		return http.StatusNotFound, "not found"
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict, target.Error()
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, target.Error()
		}
	}
	if errors.Is(err, balance.ErrRecompute) {
		return http.StatusInternalServerError, balance.ErrRecompute.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError logs server failures and writes the mapped error response.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := errorStatus(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err)
	}
	ErrorResponse(status, msg).Write(w)
}
