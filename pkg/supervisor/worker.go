package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/svcctl/pkg/lifecycle"
	"github.com/bft-labs/svcctl/pkg/log"
)

// Task is one unit of work. It is abandoned, not cancelled, when a
// transition arrives first.
type Task func(ctx context.Context) error

// ErrPermanent marks a task failure that must end the worker instead of
// being retried. Wrap it: fmt.Errorf("bad input: %w", supervisor.ErrPermanent).
var ErrPermanent = errors.New("supervisor: permanent failure")

type unitResult struct {
	err      error
	duration time.Duration
}

// Worker runs a Task in a loop until its service stops.
type Worker struct {
	id      int
	inst    *lifecycle.ServiceInstance
	task    Task
	cfg     Config
	logger  log.Logger
	emitter EventEmitter
	units   int
}

func newWorker(id int, inst *lifecycle.ServiceInstance, task Task, cfg Config, logger log.Logger, emitter EventEmitter) *Worker {
	return &Worker{
		id:      id,
		inst:    inst,
		task:    task,
		cfg:     cfg,
		logger:  log.With(logger, log.Int("worker", id)),
		emitter: emitter,
	}
}

// Units returns the number of successfully completed units.
func (w *Worker) Units() int {
	return w.units
}

// Run executes the worker loop. It returns nil once the service is stopped
// or MaxUnits units have completed.
func (w *Worker) Run(ctx context.Context) error {
	backoff := NewBackoff(w.cfg.BackoffInitial, w.cfg.BackoffMax)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := lifecycle.WaitFuture(ctx, w.inst, w.runUnit)
		if err != nil {
			return err
		}

		if ev.Kind == lifecycle.EventStatusChanged {
			stop, err := w.handleStatus(ctx, ev.Status)
			if err != nil || stop {
				return err
			}
			continue
		}

		res := ev.Result
		if w.emitter != nil {
			w.emitter.OnUnitDone(w.id, res.duration, res.err)
		}

		if res.err != nil {
			if errors.Is(res.err, ErrPermanent) {
				w.logger.Error("unit failed permanently", log.Err(res.err))
				return res.err
			}
			delay := backoff.Next()
			w.logger.Warn("unit failed",
				log.Err(res.err),
				log.Int("attempt", backoff.Attempts()),
				log.Duration("retry_in", delay),
			)
			stop, err := w.delay(ctx, delay)
			if err != nil || stop {
				return err
			}
			continue
		}

		backoff.Reset()
		w.units++
		if w.cfg.MaxUnits > 0 && w.units >= w.cfg.MaxUnits {
			w.logger.Info("unit limit reached", log.Int("units", w.units))
			return nil
		}
	}
}

func (w *Worker) runUnit(ctx context.Context) unitResult {
	start := time.Now()
	err := w.task(ctx)
	return unitResult{err: err, duration: time.Since(start)}
}

// delay waits out a retry delay unless a transition arrives first.
func (w *Worker) delay(ctx context.Context, d time.Duration) (bool, error) {
	ev, err := lifecycle.WaitFuture(ctx, w.inst, func(ctx context.Context) struct{} {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
		return struct{}{}
	})
	if err != nil {
		return false, err
	}
	if ev.Kind == lifecycle.EventStatusChanged {
		return w.handleStatus(ctx, ev.Status)
	}
	return false, nil
}

// handleStatus reacts to a transition and reports whether the worker must exit.
func (w *Worker) handleStatus(ctx context.Context, status lifecycle.Status) (bool, error) {
	switch {
	case status.IsStopped():
		w.logger.Info("worker stopped", log.Int("units", w.units))
		return true, nil
	case status.IsPaused():
		w.logger.Debug("worker paused", log.Stringer("status", status))
		next, err := status.PauseContext().WaitResumeOrStop(ctx)
		if err != nil {
			return false, err
		}
		if next.IsStopped() {
			w.logger.Info("worker stopped while paused", log.Int("units", w.units))
			return true, nil
		}
		w.logger.Debug("worker resumed")
	}
	return false, nil
}
