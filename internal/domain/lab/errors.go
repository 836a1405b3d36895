package lab

import "errors"

// Failure kinds returned by the order engine. Callers branch with errors.Is:
// ErrConcurrentModification is retryable, the rest are caller mistakes to
// surface. None of them are used for control flow inside the engine.
var (
	ErrEmptyTestSelection     = errors.New("order requires at least one test")
	ErrUnknownDetail          = errors.New("order detail not found")
	ErrUnknownParameter       = errors.New("parameter not found on ordered test")
	ErrParameterRequired      = errors.New("parameter selection does not match test definition")
	ErrIllegalTransition      = errors.New("illegal order status transition")
	ErrOrderAlreadyFinalized  = errors.New("order is completed or cancelled")
	ErrConcurrentModification = errors.New("order was modified concurrently")
)
