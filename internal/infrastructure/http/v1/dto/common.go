// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusResponse reports the app-level connectivity and session state.
type StatusResponse struct {
	Online        bool   `json:"online"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}
