// Package dto provides request and response bodies of the HTTP API.
package dto

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body rendered by middleware.ErrorHandler.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
