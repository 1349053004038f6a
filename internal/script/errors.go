package script

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout reports a Lua execution timeout. No function in
	// this package returns it, since State does not apply its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrInstructionLimit reports an exceeded instruction limit. No function
	// in this package returns it, since Lua execution does not count
	// instructions.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")
)
