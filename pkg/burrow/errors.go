package burrow

import (
	"errors"
	"fmt"
)

// Sentinel errors for game construction.
var (
	// ErrNoInput is returned when a Game is built without an input source.
	ErrNoInput = errors.New("burrow: input source is required")

	// ErrNoScreen is returned when a Game is built without a screen.
	ErrNoScreen = errors.New("burrow: screen is required")
)

// ThreadError wraps an error returned by one of the game goroutines.
type ThreadError struct {
	// Thread names the goroutine: "controller", "tui" or "simulation".
	Thread string

	// Err is the error it returned.
	Err error
}

// Error implements the error interface.
func (e *ThreadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Thread, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ThreadError) Unwrap() error {
	return e.Err
}

// PanicError reports a goroutine that panicked. The panic is recovered, the
// other goroutines are shut down and Run returns this error.
type PanicError struct {
	// Thread names the goroutine that panicked.
	Thread string

	// Value is the recovered panic value.
	Value any

	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Thread, e.Value)
}

// Unwrap returns the panic value if it is an error, so that typed access
// failures (*access.PoisonError, *access.InvariantError) can be matched with
// errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
