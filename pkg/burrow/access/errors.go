package access

import "fmt"

// PoisonError is the panic value raised when a lock is used after a panic
// unwound while it was held. The state behind the lock may be inconsistent,
// so no further progress is possible.
type PoisonError struct {
	Key Key
	Op  string
	Err error // underlying cause, if any
}

func (e *PoisonError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("access: %s: lock for %s poisoned: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("access: %s: lock for %s poisoned", e.Op, e.Key)
}

// Unwrap returns the underlying cause.
func (e *PoisonError) Unwrap() error {
	return e.Err
}

// InvariantError is the panic value raised when a release observes a flag
// combination the state machine can never produce.
type InvariantError struct {
	Key          Key
	Mode         Mode
	Readers      int
	ReadAllowed  bool
	WriteAllowed bool
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("access: invalid state on %s release of %s: readers=%d read_allowed=%t write_allowed=%t",
		e.Mode, e.Key, e.Readers, e.ReadAllowed, e.WriteAllowed)
}

// GuardError is the panic value raised when a guard is acquired twice or
// after it was released.
type GuardError struct {
	Key    Key
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("access: guard for %s: %s", e.Key, e.Reason)
}
