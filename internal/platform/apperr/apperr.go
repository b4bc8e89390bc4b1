// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error values that cross the service boundary.

Services return [*AppError] for every outcome a client is expected to see.
Anything else reaching the HTTP layer is reported as INTERNAL_ERROR and
its text is only logged.

Codes:

  - NOT_FOUND, UNAUTHORIZED, FORBIDDEN: resource and permission outcomes.
  - VALIDATION_ERROR, DUPLICATE_REVIEW, INVALID_CREDENTIALS: rejected input (400).
  - CONFLICT: a unique constraint fired. Services usually rewrite it as a
    field error before it reaches a client.
  - RATE_LIMITED, SERVICE_UNAVAILABLE, INTERNAL_ERROR: transport and
    infrastructure failures.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes carried in the "code" field of error responses.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateReview    = "DUPLICATE_REVIEW"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// PermissionDenied is the message of every object-level authorization failure.
const PermissionDenied = "You do not have permission to perform this action"

// AppError pairs a client-safe message with its HTTP status.
//
// Cause is logged server-side and never serialized.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Client Errors (4xx)

// NotFound reports a missing resource, e.g. NotFound("Title") reads "Title not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// Unauthorized is returned to anonymous callers of protected operations.
func Unauthorized(msg string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, msg)
}

// Forbidden is returned to authenticated callers that a rule denies.
func Forbidden(msg string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, msg)
}

// Conflict reports a unique-constraint violation.
func Conflict(msg string) *AppError {
	return newError(http.StatusConflict, CodeConflict, msg)
}

// ValidationError reports rejected input with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError(http.StatusBadRequest, CodeValidation, msg)
	err.Details = details
	return err
}

// DuplicateReview is returned when the author already reviewed the title.
// Its own code lets clients tell it apart from field validation.
func DuplicateReview() *AppError {
	return newError(http.StatusBadRequest, CodeDuplicateReview, "You have already reviewed this title")
}

// InvalidCredentials is the single answer to a failed confirmation code
// exchange, whether the username or the code was wrong.
func InvalidCredentials() *AppError {
	return newError(http.StatusBadRequest, CodeInvalidCredentials, "Please check your credentials")
}

// RateLimited tells the client when to retry.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # Server Errors (5xx)

// Internal wraps an unexpected failure. Only the generic message is sent.
func Internal(cause error) *AppError {
	err := newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// ServiceUnavailable reports an unreachable collaborator such as the mail relay.
func ServiceUnavailable(msg string) *AppError {
	return newError(http.StatusServiceUnavailable, CodeUnavailable, msg)
}

// # Helpers

// As extracts the [*AppError] from err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with code.
func HasCode(err error, code string) bool {
	appError := As(err)
	return appError != nil && appError.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND [*AppError].
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
