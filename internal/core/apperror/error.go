// Package apperror provides structured errors rendered as {code, message, details}.
// Every failure the HTTP layer is expected to show a client goes through AppError.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	// 5xx
	CodeInternal = "INTERNAL_ERROR"

	// 400
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicate          = "DUPLICATE_ENTRY"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeNoSubscriptions    = "NO_SUBSCRIPTIONS"
	CodeTokenNotSubscribed = "TOKEN_NOT_SUBSCRIBED"

	// 403
	CodeForbidden = "FORBIDDEN"

	// 422
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeOrderIDsExhausted = "ORDER_IDS_EXHAUSTED"

	// 429
	CodeRateLimited = "RATE_LIMITED"
)

// AppError is the standard error type of the service.
type AppError struct {
	// Code is a machine-readable identifier
	Code string `json:"code"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Details carries extra context (ids, names, tokens)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the status the API responds with
	HTTPStatus int `json:"-"`

	// Err is the underlying cause, never exposed in JSON
	Err error `json:"-"`
}

// Error implements error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factories ---

// NewValidation creates a malformed-input error.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a missing-entity error. The message is shown to clients as is.
func NewNotFound(entity string, id any, message string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicate creates a uniqueness violation.
func NewDuplicate(entity, field string, value any) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with %s %v already exists", entity, field, value),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewDuplicateID is returned when an explicit order id is already taken by an active order.
func NewDuplicateID(id int) *AppError {
	return &AppError{
		Code:       CodeDuplicateID,
		Message:    fmt.Sprintf("There already is an active order with the id %d", id),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"id": id},
	}
}

// NewInvalidToken creates a malformed push token error.
func NewInvalidToken(token string) *AppError {
	return &AppError{
		Code:       CodeInvalidToken,
		Message:    fmt.Sprintf("%s is not a valid expo token", token),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNoSubscriptions is returned when nobody is subscribed to an order.
func NewNoSubscriptions(orderID int) *AppError {
	return &AppError{
		Code:       CodeNoSubscriptions,
		Message:    fmt.Sprintf("There are no subscriptions for order #%d", orderID),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"id": orderID},
	}
}

// NewTokenNotSubscribed is returned when a specific token is not subscribed to an order.
func NewTokenNotSubscribed(orderID int, token string) *AppError {
	return &AppError{
		Code:       CodeTokenNotSubscribed,
		Message:    fmt.Sprintf("Token %s is not subscribed to order #%d", token, orderID),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"id": orderID},
	}
}

// NewForbidden creates an authorization error. Callers must not attach details.
func NewForbidden() *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    "Forbidden",
		HTTPStatus: http.StatusForbidden,
	}
}

// NewBusinessRule creates a business rule violation (422).
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewRateLimited creates a throttling error (429).
func NewRateLimited() *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewInternal creates an internal server error. The cause stays server-side.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helpers ---

// AsAppError extracts AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks for CodeNotFound.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// GetHTTPStatus returns the status to respond with for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
