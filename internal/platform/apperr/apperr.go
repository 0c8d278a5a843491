// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for LifeQuest.

Every domain failure is an [*AppError] tagged with a [Kind] from a closed set.
The HTTP status and machine-readable code of a kind come from a fixed table,
so the boundary layer never has to guess how to present an error.

Kinds:

  - Authentication: AccountExists, InvalidCredentials, InvalidToken, AccountNotFound, OAuth.
  - Input: Validation.
  - Resources: NotFound, Conflict, IdentityLocked, Forbidden, Unauthorized, RateLimited.
  - Server: Internal, ServiceUnavailable.

Every error that leaves the service layer should be an [AppError] or wrap one,
otherwise it is reported to the client as an opaque internal failure.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Kinds

// Kind identifies a class of failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAccountExists
	KindInvalidCredentials
	KindInvalidToken
	KindAccountNotFound
	KindOAuth
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	KindIdentityLocked
	KindForbidden
	KindRateLimited
	KindServiceUnavailable
)

type kindInfo struct {
	code   string
	status int
}

// kindTable is the only place a kind is bound to a transport status.
var kindTable = map[Kind]kindInfo{
	KindInternal:           {"INTERNAL_ERROR", http.StatusInternalServerError},
	KindAccountExists:      {"ACCOUNT_EXISTS", http.StatusConflict},
	KindInvalidCredentials: {"INVALID_CREDENTIALS", http.StatusUnauthorized},
	KindInvalidToken:       {"INVALID_TOKEN", http.StatusUnauthorized},
	KindAccountNotFound:    {"ACCOUNT_NOT_FOUND", http.StatusUnauthorized},
	KindOAuth:              {"OAUTH_ERROR", http.StatusUnauthorized},
	KindValidation:         {"VALIDATION_ERROR", http.StatusBadRequest},
	KindUnauthorized:       {"UNAUTHORIZED", http.StatusUnauthorized},
	KindNotFound:           {"NOT_FOUND", http.StatusNotFound},
	KindConflict:           {"CONFLICT", http.StatusConflict},
	KindIdentityLocked:     {"IDENTITY_LOCKED", http.StatusForbidden},
	KindForbidden:          {"FORBIDDEN", http.StatusForbidden},
	KindRateLimited:        {"RATE_LIMITED", http.StatusTooManyRequests},
	KindServiceUnavailable: {"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
}

// Code returns the machine-readable identifier of the kind.
func (kind Kind) Code() string {
	if info, ok := kindTable[kind]; ok {
		return info.code
	}
	return kindTable[KindInternal].code
}

// Status returns the HTTP status code bound to the kind.
func (kind Kind) Status() int {
	if info, ok := kindTable[kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (kind Kind) String() string { return kind.Code() }

// # Error Type

// AppError is the canonical error type for the LifeQuest API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Kind is the closed error class. Code and HTTPStatus are derived from it.
	Kind Kind `json:"-"`
	// Code is a machine-readable error identifier (e.g. "INVALID_TOKEN").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RetryAfter is the suggested back-off in seconds for RATE_LIMITED responses.
	RetryAfter int `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// New builds an [AppError] of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       kind.Code(),
		Message:    message,
		HTTPStatus: kind.Status(),
	}
}

// WithCause attaches an underlying error for logging and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// # Authentication Errors

// AccountExists reports that the email is already registered.
func AccountExists(msg string) *AppError { return New(KindAccountExists, msg) }

// InvalidCredentials is deliberately undifferentiated between a bad email and a bad password.
func InvalidCredentials(msg string) *AppError { return New(KindInvalidCredentials, msg) }

// InvalidToken covers malformed, expired, wrong-type and revoked-account tokens.
func InvalidToken(msg string) *AppError { return New(KindInvalidToken, msg) }

// AccountNotFound is raised on the authorization path when a token subject no longer resolves.
func AccountNotFound(msg string) *AppError { return New(KindAccountNotFound, msg) }

// OAuth covers signature, issuer, timeout and network failures of a federated assertion.
func OAuth(msg string) *AppError { return New(KindOAuth, msg) }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Profile") // Returns "Profile not found"
func NotFound(resource string) *AppError {
	return New(KindNotFound, resource+" not found")
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError { return New(KindUnauthorized, msg) }

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError { return New(KindForbidden, msg) }

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError { return New(KindConflict, msg) }

// IdentityLocked creates a 403 [AppError] for a mutation attempted inside the lock window.
func IdentityLocked(msg string) *AppError { return New(KindIdentityLocked, msg) }

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	appError := New(KindValidation, msg)
	appError.Details = details
	return appError
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	appError := New(KindRateLimited, fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
	appError.RetryAfter = retryAfterSeconds
	return appError
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return New(KindInternal, "An unexpected error occurred").WithCause(cause)
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError { return New(KindServiceUnavailable, msg) }

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether the first [*AppError] in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Kind == kind
}
