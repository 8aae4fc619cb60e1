package lifecycle

import "errors"

// Errors returned by the control plane. Check them with errors.Is.
var (
	// ErrClosed is returned when waiting on an instance that was released.
	ErrClosed = errors.New("lifecycle: instance closed")

	// ErrNoObservers is returned by a transition published while no
	// ServiceInstance is alive. The transition is still applied.
	ErrNoObservers = errors.New("lifecycle: no observers")
)
