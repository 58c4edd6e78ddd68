package media

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable taxonomy code reported to callers.
type ErrorCode string

const (
	CodeValidation ErrorCode = "validation_error"
	CodeResolution ErrorCode = "resolution_error"
	CodeProcess    ErrorCode = "process_error"
	CodeSink       ErrorCode = "sink_error"
	CodeInternal   ErrorCode = "internal_error"
)

// Error is a classified download failure.
type Error struct {
	Code   ErrorCode
	Origin Origin
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Reason {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a malformed request.
func Validation(reason string) *Error {
	return &Error{Code: CodeValidation, Reason: reason}
}

// Resolution reports a locator or rendition that could not be resolved or streamed.
func Resolution(reason string, err error) *Error {
	return &Error{Code: CodeResolution, Origin: OriginStream, Reason: reason, Err: err}
}

// Internal reports an unexpected failure.
func Internal(reason string, err error) *Error {
	return &Error{Code: CodeInternal, Reason: reason, Err: err}
}

// CodeOf returns the taxonomy code carried by err, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Code
	}
	return CodeInternal
}

// AsError classifies any error, wrapping unknown ones as internal.
func AsError(err error) *Error {
	var merr *Error
	if errors.As(err, &merr) {
		return merr
	}
	return Internal(err.Error(), err)
}
