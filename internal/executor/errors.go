package executor

import "errors"

var (
	// ErrEmptyCommand is returned when Launch is given no arguments.
	ErrEmptyCommand = errors.New("executor: empty command")

	// ErrCommandNotFound is returned when the program cannot be resolved.
	ErrCommandNotFound = errors.New("executor: command not found")
)
