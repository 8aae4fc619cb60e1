package lifecycle

import (
	"context"
	"fmt"
	"sync"
)

// controlContext is the state shared by the owner and every observer.
// The lock is held only for reads and field updates, never across a wait.
type controlContext struct {
	mu sync.Mutex

	status  Status
	request ControlRequest
	epoch   uint64

	// changed is closed and replaced on every publish.
	changed chan struct{}

	// resume is closed on Resume and replaced for the next pause epoch.
	resume chan struct{}

	// stopped is closed once, on the first Stop.
	stopped chan struct{}

	observers int
}

func newControlContext() *controlContext {
	return &controlContext{
		status:    runningStatus(),
		request:   RequestInit,
		changed:   make(chan struct{}),
		resume:    make(chan struct{}),
		stopped:   make(chan struct{}),
		observers: 1,
	}
}

func (c *controlContext) current() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *controlContext) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// snapshot returns the current status together with the channel that the
// next publish will close. Both are read under one lock so a transition
// cannot slip between them.
func (c *controlContext) snapshot() (Status, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.changed
}

// observe re-derives the status from the latest published request.
func (c *controlContext) observe() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observeLocked()
}

func (c *controlContext) observeLocked() Status {
	var kind StatusKind
	switch c.request {
	case RequestStop:
		kind = StatusStopped
	case RequestPause:
		kind = StatusPaused
	case RequestContinue:
		kind = StatusRunning
	default:
		panic(fmt.Sprintf("lifecycle: observed %s request at epoch %d", c.request, c.epoch))
	}
	if kind != c.status.kind {
		panic(fmt.Sprintf("lifecycle: request %s diverged from status %s at epoch %d",
			c.request, c.status, c.epoch))
	}
	return c.status
}

// publish applies req, advances the epoch and wakes every waiter.
func (c *controlContext) publish(req ControlRequest) (Status, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch req {
	case RequestStop:
		c.status = stoppedStatus()
		close(c.stopped)
	case RequestPause:
		c.status = pausedStatus(&PauseContext{
			epoch:   c.epoch + 1,
			resumed: c.resume,
			stopped: c.stopped,
		})
	case RequestContinue:
		close(c.resume)
		c.resume = make(chan struct{})
		c.status = runningStatus()
	default:
		panic(fmt.Sprintf("lifecycle: cannot publish %s", req))
	}

	c.request = req
	c.epoch++
	close(c.changed)
	c.changed = make(chan struct{})

	if c.observers == 0 {
		return c.status, c.epoch, ErrNoObservers
	}
	return c.status, c.epoch, nil
}

func (c *controlContext) addObserver() {
	c.mu.Lock()
	c.observers++
	c.mu.Unlock()
}

func (c *controlContext) removeObserver() {
	c.mu.Lock()
	if c.observers > 0 {
		c.observers--
	}
	c.mu.Unlock()
}

// PauseContext is handed to observers inside a Paused status. It shares the
// resume signal of the pause that created it, so waiting on it is waiting
// for that specific pause to end. Later transitions do not change it.
type PauseContext struct {
	epoch   uint64
	resumed <-chan struct{}
	stopped <-chan struct{}
}

// Epoch returns the epoch of the pause transition.
func (p *PauseContext) Epoch() uint64 {
	return p.epoch
}

// Resumed returns a channel that is closed when this pause ends with Resume.
func (p *PauseContext) Resumed() <-chan struct{} {
	return p.resumed
}

// Wait blocks until this pause is resumed. A Stop issued while paused does
// not wake it; use WaitResumeOrStop for that. Returns immediately if the
// pause was already resumed.
func (p *PauseContext) Wait(ctx context.Context) error {
	select {
	case <-p.resumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitResumeOrStop blocks until this pause ends, either by Resume (Running)
// or by Stop (Stopped).
func (p *PauseContext) WaitResumeOrStop(ctx context.Context) (Status, error) {
	select {
	case <-p.resumed:
		return runningStatus(), nil
	case <-p.stopped:
		return stoppedStatus(), nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}
