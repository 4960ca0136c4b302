package main

import "fmt"

// cliError wraps a user-facing CLI failure (such as an empty goal
// argument) as a plain-message error that RunE returns directly.
type cliError struct {
	msg string
}

func (e *cliError) Error() string { return e.msg }

func newCLIError(format string, args ...interface{}) error {
	return &cliError{msg: fmt.Sprintf(format, args...)}
}
