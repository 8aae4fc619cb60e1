package lifecycle

import (
	"context"
	"sync/atomic"
)

// ServiceInstance is a read-only view of a service shared by observers.
// Each instance counts as one observer until Release is called; use Clone
// to hand a separate observer to another worker.
type ServiceInstance struct {
	ctl      *controlContext
	released atomic.Bool
}

// closedChan is returned by Changed when there is nothing to wait for.
var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// WaitResult is delivered by WaitAsync.
type WaitResult struct {
	Status Status
	Err    error
}

// Clone registers a new observer on the same service.
func (i *ServiceInstance) Clone() *ServiceInstance {
	i.ctl.addObserver()
	return &ServiceInstance{ctl: i.ctl}
}

// Release unregisters this observer. It is safe to call more than once.
// Waiting on a released instance fails with ErrClosed.
func (i *ServiceInstance) Release() {
	if i.released.CompareAndSwap(false, true) {
		i.ctl.removeObserver()
	}
}

// Status returns the latest published status.
func (i *ServiceInstance) Status() Status { return i.ctl.current() }

// Stopped reports whether the service has been stopped.
func (i *ServiceInstance) Stopped() bool { return i.ctl.current().IsStopped() }

// Paused reports whether the service is currently paused.
func (i *ServiceInstance) Paused() bool { return i.ctl.current().IsPaused() }

// IsRunning reports whether the service is currently running.
func (i *ServiceInstance) IsRunning() bool { return i.ctl.current().IsRunning() }

// Changed returns a channel that is closed by the next transition. Like
// Wait, it is already closed when the service is paused or stopped, or when
// the instance has been released; read Status (or call Wait) afterwards to
// learn the outcome. No goroutine is started, so it is the form to use in a
// select that may be abandoned.
func (i *ServiceInstance) Changed() <-chan struct{} {
	if i.released.Load() {
		return closedChan
	}
	status, changed := i.ctl.snapshot()
	if !status.IsRunning() {
		return closedChan
	}
	return changed
}

// Epoch returns the number of transitions published so far.
func (i *ServiceInstance) Epoch() uint64 {
	return i.ctl.currentEpoch()
}

// Wait returns the current status immediately if the service is paused or
// stopped. Otherwise it blocks until the next transition and returns the
// status derived from it.
func (i *ServiceInstance) Wait(ctx context.Context) (Status, error) {
	if i.released.Load() {
		return Status{}, ErrClosed
	}

	status, changed := i.ctl.snapshot()
	if !status.IsRunning() {
		return status, nil
	}

	select {
	case <-changed:
		return i.ctl.observe(), nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// WaitAsync delivers the outcome of Wait on the returned channel, which
// receives exactly one value. When the service is running a goroutine waits
// for the next transition; cancel ctx when abandoning the result, or use
// Changed, otherwise that goroutine lives until the next transition.
func (i *ServiceInstance) WaitAsync(ctx context.Context) <-chan WaitResult {
	out := make(chan WaitResult, 1)
	if i.released.Load() {
		out <- WaitResult{Err: ErrClosed}
		return out
	}
	if status := i.ctl.current(); !status.IsRunning() {
		out <- WaitResult{Status: status}
		return out
	}
	go func() {
		status, err := i.Wait(ctx)
		out <- WaitResult{Status: status, Err: err}
	}()
	return out
}
