package lifecycle

import "context"

// EventKind tells which side of WaitFuture resolved first.
type EventKind int

const (
	EventFuture EventKind = iota
	EventStatusChanged
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventFuture:
		return "Future"
	case EventStatusChanged:
		return "StatusChanged"
	default:
		return "Unknown"
	}
}

// Event is the outcome of WaitFuture. Result is set for EventFuture and
// Status for EventStatusChanged.
type Event[T any] struct {
	Kind   EventKind
	Result T
	Status Status
}

// WaitFuture runs work and races it against the next transition of inst.
// If the service is not running, work is not started and the current status
// is returned. When the transition wins, work keeps running in the
// background and its result is discarded; cancelling it is up to the caller.
func WaitFuture[T any](ctx context.Context, inst *ServiceInstance, work func(context.Context) T) (Event[T], error) {
	if inst.released.Load() {
		return Event[T]{}, ErrClosed
	}

	status, changed := inst.ctl.snapshot()
	if !status.IsRunning() {
		return Event[T]{Kind: EventStatusChanged, Status: status}, nil
	}

	done := make(chan T, 1)
	go func() {
		done <- work(ctx)
	}()

	select {
	case result := <-done:
		return Event[T]{Kind: EventFuture, Result: result, Status: status}, nil
	case <-changed:
		return Event[T]{Kind: EventStatusChanged, Status: inst.ctl.observe()}, nil
	case <-ctx.Done():
		return Event[T]{}, ctx.Err()
	}
}
