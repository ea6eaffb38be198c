package event

import "fmt"

// HydrationError reports an event dropped because its data was malformed.
type HydrationError struct {
	EventType  string
	DispatchID string
	Err        error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("hydrate %s: %v", e.EventType, e.Err)
}

func (e *HydrationError) Unwrap() error {
	return e.Err
}

// ListenerError reports a listener that returned an error or panicked.
type ListenerError struct {
	EventType  string
	ListenerID ListenerID
	Panicked   bool
	Err        error
}

func (e *ListenerError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("listener %d for %s panicked: %v", e.ListenerID, e.EventType, e.Err)
	}
	return fmt.Sprintf("listener %d for %s: %v", e.ListenerID, e.EventType, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}
