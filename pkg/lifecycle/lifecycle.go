package lifecycle

import "fmt"

// StatusKind identifies one of the three service states.
type StatusKind int

const (
	StatusRunning StatusKind = iota
	StatusPaused
	StatusStopped
)

// String returns a human-readable representation of the status kind.
func (k StatusKind) String() string {
	switch k {
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Status is the observable state of a service. A paused status carries the
// PauseContext of the pause that produced it. The zero value is Running.
type Status struct {
	kind  StatusKind
	pause *PauseContext
}

func runningStatus() Status { return Status{kind: StatusRunning} }
func stoppedStatus() Status { return Status{kind: StatusStopped} }

func pausedStatus(pc *PauseContext) Status {
	return Status{kind: StatusPaused, pause: pc}
}

// Kind returns the status kind.
func (s Status) Kind() StatusKind { return s.kind }

// IsRunning reports whether the status is Running.
func (s Status) IsRunning() bool { return s.kind == StatusRunning }

// IsPaused reports whether the status is Paused.
func (s Status) IsPaused() bool { return s.kind == StatusPaused }

// IsStopped reports whether the status is Stopped.
func (s Status) IsStopped() bool { return s.kind == StatusStopped }

// PauseContext returns the pause snapshot, or nil unless the status is Paused.
func (s Status) PauseContext() *PauseContext {
	return s.pause
}

// String returns the kind name, with the pause epoch for Paused.
func (s Status) String() string {
	if s.kind == StatusPaused && s.pause != nil {
		return fmt.Sprintf("Paused(epoch=%d)", s.pause.epoch)
	}
	return s.kind.String()
}

// ControlRequest is the value published to observers on every transition.
type ControlRequest int

const (
	// RequestInit is only present before the first transition. Observers
	// never surface it as a status.
	RequestInit ControlRequest = iota
	RequestStop
	RequestPause
	RequestContinue
)

// String returns a human-readable representation of the request.
func (r ControlRequest) String() string {
	switch r {
	case RequestInit:
		return "Init"
	case RequestStop:
		return "Stop"
	case RequestPause:
		return "Pause"
	case RequestContinue:
		return "Continue"
	default:
		return "Unknown"
	}
}

// EventEmitter is called after every published transition.
type EventEmitter interface {
	OnStateChange(previous, current Status, request ControlRequest)
}
