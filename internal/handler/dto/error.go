// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the body for coded errors such as authorization failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidationErrorResponse lists validation messages for a rejected record.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// MessageResponse is a body carrying a single message.
type MessageResponse struct {
	Message string `json:"message"`
}
