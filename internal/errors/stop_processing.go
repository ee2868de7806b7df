package errors

import "errors"

// StopProcessingError means the user backed out of an interactive step.
// The CLI logs it and exits cleanly instead of failing.
type StopProcessingError struct {
	Reason string
}

func (e *StopProcessingError) Error() string { return e.Reason }

func NewStopProcessingError(reason string) *StopProcessingError {
	return &StopProcessingError{Reason: reason}
}

// IsStopProcessingError reports whether a StopProcessingError is anywhere in err's chain.
func IsStopProcessingError(err error) bool {
	var stop *StopProcessingError
	return errors.As(err, &stop)
}
