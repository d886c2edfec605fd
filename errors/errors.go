// Package errors provides the typed errors used across the report pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ReportError is a classified failure with optional context
type ReportError struct {
	Type     ErrorType
	Severity ErrorSeverity
	Message  string
	Cause    error
	Context  map[string]interface{}
}

// Error implements the error interface
func (e *ReportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ReportError) WithContext(key string, value interface{}) *ReportError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the default severity
func (e *ReportError) WithSeverity(s ErrorSeverity) *ReportError {
	e.Severity = s
	return e
}

// Fatal reports whether the error must abort the run
func (e *ReportError) Fatal() bool {
	return e.Severity >= SeverityCritical
}

// New creates a new error
func New(errType ErrorType, message string) *ReportError {
	return &ReportError{
		Type:     errType,
		Severity: defaultSeverity[errType],
		Message:  message,
	}
}

// Newf creates a new formatted error
func Newf(errType ErrorType, format string, args ...interface{}) *ReportError {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a type and message
func Wrap(errType ErrorType, message string, cause error) *ReportError {
	e := New(errType, message)
	e.Cause = cause
	return e
}

// Wrapf wraps an error with a formatted message
func Wrapf(errType ErrorType, cause error, format string, args ...interface{}) *ReportError {
	return Wrap(errType, fmt.Sprintf(format, args...), cause)
}

// IsType reports whether any error in the chain is a ReportError of type t
func IsType(err error, t ErrorType) bool {
	var re *ReportError
	for err != nil {
		if stderrors.As(err, &re) {
			if re.Type == t {
				return true
			}
			err = re.Cause
			continue
		}
		return false
	}
	return false
}

// As is errors.As from the standard library
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Invariant panics with a logic error. It marks conditions that can only
// arise from a defect in this program, never from input data.
func Invariant(format string, args ...interface{}) {
	panic(Newf(ErrorTypeLogic, format, args...))
}
