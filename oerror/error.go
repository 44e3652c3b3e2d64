package oerror

import "fmt"

// Error is raised when the simulation reaches a state that should be impossible.
type Error struct {
	Err string
}

func New(format string, args ...interface{}) *Error {
	return &Error{Err: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return "dozersim: " + e.Err
}
