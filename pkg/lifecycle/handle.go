package lifecycle

import (
	"fmt"
	"sync"

	"github.com/bft-labs/svcctl/pkg/log"
)

// Option configures a service created by New.
type Option func(*options)

type options struct {
	logger  log.Logger
	emitter EventEmitter
}

// WithLogger sets the logger used for transition logging.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventEmitter sets a handler called after every transition.
// It runs synchronously on the owner's goroutine.
func WithEventEmitter(emitter EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// ServiceHandle is the owner side of a service. Only one goroutine should
// issue transitions; the handle must not be copied.
//
// Observers are only released from a running service by a transition, so
// an owner that goes away without calling Close (or Stop) leaves every
// blocked Wait and WaitFuture waiting until their contexts end.
type ServiceHandle struct {
	mu      sync.Mutex
	status  Status
	ctl     *controlContext
	logger  log.Logger
	emitter EventEmitter
}

// New creates a running service and returns its owner handle and a first
// observer. Call Close on the handle when the owner is done with it.
func New(opts ...Option) (*ServiceHandle, *ServiceInstance) {
	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	ctl := newControlContext()
	h := &ServiceHandle{
		status:  runningStatus(),
		ctl:     ctl,
		logger:  o.logger,
		emitter: o.emitter,
	}
	return h, &ServiceInstance{ctl: ctl}
}

// Status returns the status as last set by this handle.
func (h *ServiceHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Stop moves the service to Stopped. Stopping a stopped service publishes
// nothing and returns Stopped.
func (h *ServiceHandle) Stop() (Status, error) {
	return h.transition(RequestStop, func(s Status) bool { return !s.IsStopped() })
}

// Pause moves a running service to Paused. From any other state it is a
// no-op returning the current status.
func (h *ServiceHandle) Pause() (Status, error) {
	return h.transition(RequestPause, Status.IsRunning)
}

// Resume moves a paused service back to Running, waking every PauseContext
// of the current pause. From any other state it is a no-op.
func (h *ServiceHandle) Resume() (Status, error) {
	return h.transition(RequestContinue, Status.IsPaused)
}

// Close stops the service if it is not stopped yet. Publish failures are
// logged and dropped since nobody is left to act on them.
func (h *ServiceHandle) Close() error {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while closing service", log.Any("panic", r))
		}
	}()

	if _, err := h.Stop(); err != nil {
		h.logger.Warn("implicit stop on close", log.Err(err))
	}
	return nil
}

func (h *ServiceHandle) transition(req ControlRequest, legal func(Status) bool) (Status, error) {
	previous, current, epoch, published, err := h.apply(req, legal)
	if !published {
		return current, nil
	}

	if h.emitter != nil {
		h.emitter.OnStateChange(previous, current, req)
	}

	h.logger.Info("state transition",
		log.Stringer("from", previous),
		log.Stringer("to", current),
		log.Stringer("request", req),
		log.Uint64("epoch", epoch),
	)

	if err != nil {
		return current, fmt.Errorf("publish %s: %w", req, err)
	}
	return current, nil
}

// apply publishes req under h.mu when legal allows it. The lock is released
// even if publish panics, so a recovered defect does not wedge the handle.
func (h *ServiceHandle) apply(req ControlRequest, legal func(Status) bool) (previous, current Status, epoch uint64, published bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	previous = h.status
	if !legal(previous) {
		return previous, previous, 0, false, nil
	}

	current, epoch, err = h.ctl.publish(req)
	h.status = current
	return previous, current, epoch, true, err
}
