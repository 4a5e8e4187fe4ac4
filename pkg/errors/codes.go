package errors

import "fmt"

// ErrorCode identifies a specific failure condition of a supervisor action.
type ErrorCode int

const (
	ErrCodeUnknown  ErrorCode = 1000
	ErrCodeBadInput ErrorCode = 1001

	// start
	ErrCodeDirUnreachable ErrorCode = 2001
	ErrCodeLaunchFailed   ErrorCode = 2002

	// preconditions
	ErrCodeNodeTracked ErrorCode = 3001

	// log management
	ErrCodeMissingArtifact ErrorCode = 4001
)

// SupervisorError carries structured failure information: the error code,
// the action being performed, and the underlying cause when there is one.
type SupervisorError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation is the supervisor action that failed.
	Operation string
	// Err is the underlying error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *SupervisorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *SupervisorError) Unwrap() error {
	return e.Err
}

// New creates a SupervisorError with the given code, operation, message,
// and underlying cause.
func New(code ErrorCode, op, msg string, err error) error {
	return &SupervisorError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// CodeOf extracts the ErrorCode from err. Errors that are not
// SupervisorErrors map to ErrCodeUnknown.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*SupervisorError); ok {
		return se.Code
	}
	return ErrCodeUnknown
}
