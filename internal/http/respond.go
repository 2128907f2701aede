// Package http exposes the inventory as a JSON API.
//
// This file implements a fluent builder for JSON responses, so handlers
// compose status, headers, and payload in one chain and error bodies stay
// uniform across endpoints.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pantry/internal/core"
	"pantry/internal/store"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewResponse creates a response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the response payload, marshalled on Write.
func (b *ResponseBuilder) JSON(payload any) *ResponseBuilder {
	b.payload = payload
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Response marshal failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
}

// errorBody is the uniform error payload.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// BadGatewayError creates a 502 Bad Gateway error response.
func BadGatewayError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message)
}

// DomainError maps a model or store error onto the right status code.
// Unknown targets are 404, rejected edits are 422, a lost write race is
// 409, anything else means the backing store misbehaved.
func DomainError(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrItemNotFound),
		errors.Is(err, core.ErrUnknownCategory):
		return NotFoundError(err.Error())
	case errors.Is(err, store.ErrConflict):
		return ErrorResponse(http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrCategoryInUse),
		errors.Is(err, core.ErrDuplicateCategory),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrInvalidPoints),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidMonth):
		return UnprocessableEntityError(err.Error())
	default:
		return BadGatewayError("inventory store unavailable")
	}
}
