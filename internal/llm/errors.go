package llm

import "fmt"

// APIError is a failure reported by the model endpoint, either through a
// non-2xx status or an error object in the response body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	if e.Code != "" {
		return fmt.Sprintf("model API error (status %d, code %s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("model API error (status %d): %s", e.StatusCode, msg)
}
