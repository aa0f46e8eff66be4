package models

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	ErrorUnavailable = "Knowledge base is not available. Please contact admin."
	ErrorGeneration  = "Failed to generate an answer."
)
