package api

import (
	"errors"
	"fmt"
)

// Fixed client-side messages. Transport and download failures never take their
// message from a response body.
const (
	networkErrorMessage  = "Network error. Please check your connection."
	genericErrorMessage  = "An error occurred"
	downloadErrorMessage = "Failed to download file"
)

// APIError is the one error type surfaced by the client. Status carries the
// HTTP status code of the failed request; Status 0 means the request never
// reached the backend (DNS failure, connection refused, cancelled context).
// Code is the machine-readable code from the backend error envelope, when the
// backend provided one.
type APIError struct {
	Message string
	Status  int
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsTransport reports whether the error was produced before any response was
// received from the backend.
func (e *APIError) IsTransport() bool {
	return e.Status == 0
}

// IsUnauthorized reports whether the backend rejected the request with 401.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == 401
}

func newTransportError() *APIError {
	return &APIError{Message: networkErrorMessage, Status: 0}
}

func newDownloadError(status int) *APIError {
	return &APIError{Message: downloadErrorMessage, Status: status}
}

// AsAPIError unwraps err into an *APIError, returning nil when err does not
// carry one.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
