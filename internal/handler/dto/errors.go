// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the envelope for every API error.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request. Fields is set for validation
// failures and maps input field names to messages.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
