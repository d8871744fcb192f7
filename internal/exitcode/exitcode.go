// Package exitcode defines process exit codes and carries them on errors.
package exitcode

import "errors"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments or flags.
	UserError = 1

	// ConfigError indicates an unreadable or invalid configuration, or a log
	// file that cannot be opened.
	ConfigError = 2

	// RuntimeError indicates a backend or front-end failure.
	RuntimeError = 3
)

// Error attaches an exit code to err.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err annotated with code. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// From returns the exit code for err: Success for nil, the attached code when
// present, UserError otherwise.
func From(err error) int {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UserError
}
