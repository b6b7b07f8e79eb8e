package lua

import "errors"

// Runtime errors.
var (
	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoSuchFunction is returned when calling an undefined global function.
	ErrNoSuchFunction = errors.New("lua function not found")
)
