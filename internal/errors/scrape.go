package errors

import (
	stdErrors "errors"
	"fmt"
	"net"
)

// InvalidInputError is returned when a guide URL is missing or points outside
// the supported site. No network request is made for invalid input.
type InvalidInputError struct {
	Input  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Input)
	}
	return e.Reason
}

// NewInvalidInputError creates a new InvalidInputError for the given input
func NewInvalidInputError(input, reason string) *InvalidInputError {
	return &InvalidInputError{Input: input, Reason: reason}
}

// IsInvalidInputError checks if error is an InvalidInputError
func IsInvalidInputError(err error) bool {
	var inputErr *InvalidInputError
	return stdErrors.As(err, &inputErr)
}

// NetworkError represents a transport failure (DNS, connection refused, timeout)
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("network error fetching %s", e.URL)
	}
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	return stdErrors.As(e.Err, &netErr) && netErr.Timeout()
}

// NewNetworkError wraps a transport error for the given URL
func NewNetworkError(url string, err error) *NetworkError {
	return &NetworkError{URL: url, Err: err}
}

// IsNetworkError checks if error is a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return stdErrors.As(err, &netErr)
}

// HTTPStatusError represents a response with a non-success status code
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// NewHTTPStatusError creates a new HTTPStatusError
func NewHTTPStatusError(url string, statusCode int) *HTTPStatusError {
	return &HTTPStatusError{URL: url, StatusCode: statusCode}
}

// IsHTTPStatusError checks if error is an HTTPStatusError
func IsHTTPStatusError(err error) bool {
	var statusErr *HTTPStatusError
	return stdErrors.As(err, &statusErr)
}

// StatusCode extracts the HTTP status code from err, or 0 when err is not an HTTPStatusError.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if stdErrors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
