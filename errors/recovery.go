package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic recovered at a run boundary
type PanicError struct {
	Value interface{}
	Stack string
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recover runs fn and returns a panic raised inside it as a logic error.
// The panic value is kept as the cause when it is already an error.
func Recover(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if re, ok := r.(*ReportError); ok {
			err = re.WithContext("recovered", true)
			return
		}
		err = Wrap(ErrorTypeLogic, "unexpected failure", &PanicError{Value: r, Stack: string(debug.Stack())})
	}()
	return fn()
}
