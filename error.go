package xconnector

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	EINTERNAL  = "internal"
	EINVALID   = "invalid"
	ENOTFOUND  = "not_found"
	EFILTER    = "invalid_filter"
	ERANGE     = "invalid_range"
	EMASSQUERY = "invalid_mass_query"
	EFETCH     = "fetch_failed"
	ESECTION   = "section_absent"
)

// Violation describes one rejected input of a validation error.
type Violation struct {
	Field  string
	Values []string
	Reason string
}

func (v Violation) String() string {
	if len(v.Values) == 0 {
		return fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return fmt.Sprintf("%s %s: %s", v.Field, strings.Join(v.Values, ","), v.Reason)
}

// Error represents an application-specific error.
type Error struct {
	Code       string
	Message    string
	Violations []Violation
}

func (e *Error) Error() string {
	return fmt.Sprintf("xconnector error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ViolationError returns an Error listing every violation in its message.
func ViolationError(code, subject string, violations []Violation) *Error {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf("%s: %s", subject, strings.Join(parts, "; ")),
		Violations: violations,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// ErrorViolations returns the violations carried by an application error.
func ErrorViolations(err error) []Violation {
	var e *Error
	if errors.As(err, &e) {
		return e.Violations
	}
	return nil
}
