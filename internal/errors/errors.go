// Package errors defines the typed error used across the client. Every
// failure surfaced to a user carries a code, a display message and, for
// backend responses, the HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode categorizes a failure.
type ErrorCode string

// Error codes.
const (
	ErrCodeNetwork      ErrorCode = "network"      // backend unreachable
	ErrCodeHTTP         ErrorCode = "http"         // non-2xx without a narrower code
	ErrCodeUnauthorized ErrorCode = "unauthorized" // 401
	ErrCodeForbidden    ErrorCode = "forbidden"    // 403
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeConflict     ErrorCode = "conflict"
	ErrCodeValidation   ErrorCode = "validation"
	ErrCodeInternal     ErrorCode = "internal"
	ErrCodeParse        ErrorCode = "parse" // body did not match the expected shape
	ErrCodeAuth         ErrorCode = "auth"  // login rejected or session unusable
	ErrCodeTimeout      ErrorCode = "timeout"
	ErrCodeCanceled     ErrorCode = "canceled"
)

// AppError is a coded error. Message is what a user sees; Cause stays
// reachable through errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Status  int
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// Network reports an unreachable backend.
func Network(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeNetwork, Message: message, Cause: cause}
}

// Parsef reports a response body that could not be decoded.
func Parsef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeParse, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus builds the error for a non-2xx response. message is kept as is.
func HTTPStatus(status int, message string) *AppError {
	return &AppError{Code: CodeForStatus(status), Message: message, Status: status}
}

var statusCodes = map[int]ErrorCode{
	http.StatusBadRequest:          ErrCodeValidation,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeValidation,
}

// CodeForStatus maps an HTTP status to an ErrorCode.
func CodeForStatus(status int) ErrorCode {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return ErrCodeInternal
	}
	return ErrCodeHTTP
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func find(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetCode returns the code of the outermost AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

// GetStatus returns the HTTP status carried by err, or 0.
func GetStatus(err error) int {
	if e := find(err); e != nil {
		return e.Status
	}
	return 0
}

// Message returns the display message of the outermost AppError, falling
// back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e := find(err); e != nil && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// Has reports whether err carries code.
func Has(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

func IsNetwork(err error) bool      { return Has(err, ErrCodeNetwork) }
func IsUnauthorized(err error) bool { return Has(err, ErrCodeUnauthorized) }
func IsForbidden(err error) bool    { return Has(err, ErrCodeForbidden) }
func IsNotFound(err error) bool     { return Has(err, ErrCodeNotFound) }
func IsConflict(err error) bool     { return Has(err, ErrCodeConflict) }
func IsParse(err error) bool        { return Has(err, ErrCodeParse) }
func IsAuth(err error) bool         { return Has(err, ErrCodeAuth) }
func IsTimeout(err error) bool      { return Has(err, ErrCodeTimeout) }
func IsCanceled(err error) bool     { return Has(err, ErrCodeCanceled) }
