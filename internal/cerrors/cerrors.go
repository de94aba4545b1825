// Package cerrors defines ConduitError, the top-level error surfaced to
// conduit.Conduit callers when the receiver/builder task group fails.
package cerrors

import "fmt"

// ConduitError wraps the first task-group error, tagging which subsystem
// raised it.
type ConduitError struct {
	Kind string
	Err  error
}

func (e *ConduitError) Error() string {
	return fmt.Sprintf("conduit: %s: %v", e.Kind, e.Err)
}

func (e *ConduitError) Unwrap() error { return e.Err }

// BrokenReceiver wraps an error raised by one of the receiver tasks.
func BrokenReceiver(err error) error {
	return &ConduitError{Kind: "BrokenReceiver", Err: err}
}

// FailedEventBuilder wraps an error raised by the event builder task.
func FailedEventBuilder(err error) error {
	return &ConduitError{Kind: "FailedEventBuilder", Err: err}
}
