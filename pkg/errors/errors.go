package errors

import "fmt"

// ErrorType represents different types of errors that can occur during a backup
type ErrorType string

const (
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeProtocol    ErrorType = "protocol"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypePostShape   ErrorType = "post_shape"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a backup error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error around cause
func Wrap(t ErrorType, cause error, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: cause}
}

// PostShape reports a post whose markup lacks an element its type requires
func PostShape(slug, format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypePostShape,
		Message: fmt.Sprintf("post %q: %s", slug, fmt.Sprintf(format, args...)),
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not an *Error
func TypeOf(err error) ErrorType {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type anywhere in its chain
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeProtocol, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypePostShape, ErrorTypeConfig:
		return false
	default:
		return false
	}
}

// TypeForStatus maps a non-2xx HTTP status code to its ErrorType
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	case statusCode >= 400:
		return ErrorTypeProtocol
	default:
		return ErrorTypeUnknown
	}
}
