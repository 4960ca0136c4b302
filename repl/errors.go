package repl

import "fmt"

// Error is returned by a REPL command that failed without the
// underlying parse or query error being worth re-wrapping further.
type Error struct {
	Command string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

func newError(cmd, format string, args ...interface{}) *Error {
	return &Error{Command: cmd, Message: fmt.Sprintf(format, args...)}
}
