package mcp

import "fmt"

// APIError represents an MCP tool error response. The introspection surface
// is read-only (spec §7): there is no conflict/validation error class to
// map, only internal errors (archive unavailable or not configured).
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errArchiveUnavailable(err error) *APIError {
	return &APIError{Code: "ARCHIVE_UNAVAILABLE", Message: err.Error()}
}

func errArchiveNotConfigured() *APIError {
	return &APIError{Code: "ARCHIVE_NOT_CONFIGURED", Message: "no archive store is wired into this server"}
}
