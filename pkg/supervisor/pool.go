package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/svcctl/pkg/lifecycle"
	"github.com/bft-labs/svcctl/pkg/log"
)

// Common supervisor errors.
var (
	ErrAlreadyStarted  = errors.New("supervisor: already started")
	ErrNotStarted      = errors.New("supervisor: not started")
	ErrShutdownTimeout = errors.New("supervisor: shutdown timeout")
)

// Config holds pool settings.
type Config struct {
	// Workers is the number of concurrent workers.
	Workers int

	// MaxUnits ends a worker after that many successful units. Zero means
	// run until stopped.
	MaxUnits int

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        1,
		BackoffInitial: 500 * time.Millisecond,
		BackoffMax:     10 * time.Second,
	}
}

// EventEmitter is called after every completed unit of work.
type EventEmitter interface {
	OnUnitDone(worker int, duration time.Duration, err error)
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithEventEmitter sets a handler for unit results.
func WithEventEmitter(emitter EventEmitter) Option {
	return func(p *Pool) {
		p.emitter = emitter
	}
}

// Pool runs Config.Workers workers, each observing the service through its
// own ServiceInstance clone.
type Pool struct {
	cfg     Config
	inst    *lifecycle.ServiceInstance
	task    Task
	logger  log.Logger
	emitter EventEmitter

	mu      sync.Mutex
	workers []*Worker
	done    chan struct{}
	err     error
}

// NewPool creates a pool. Nothing runs until Start.
func NewPool(cfg Config, inst *lifecycle.ServiceInstance, task Task, opts ...Option) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = DefaultConfig().BackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultConfig().BackoffMax
	}

	p := &Pool{
		cfg:    cfg,
		inst:   inst,
		task:   task,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. The first worker error cancels the others.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return ErrAlreadyStarted
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		inst := p.inst.Clone()
		w := newWorker(i, inst, p.task, p.cfg, p.logger, p.emitter)
		p.workers = append(p.workers, w)

		g.Go(func() error {
			defer inst.Release()
			return w.Run(gctx)
		})
	}

	p.logger.Info("pool started", log.Int("workers", p.cfg.Workers))

	done := make(chan struct{})
	p.done = done
	go func() {
		err := g.Wait()
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		close(done)
	}()

	return nil
}

// Done returns a channel closed once every worker has returned.
// It is nil before Start.
func (p *Pool) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Units returns the total number of successful units across workers.
// Only meaningful after Done is closed.
func (p *Pool) Units() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, w := range p.workers {
		total += w.Units()
	}
	return total
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires, otherwise the first
// worker error. Context cancellation is not reported as a failure.
func (p *Pool) WaitWithTimeout(timeout time.Duration) error {
	done := p.Done()
	if done == nil {
		return ErrNotStarted
	}

	select {
	case <-done:
	case <-time.After(timeout):
		p.logger.Warn("shutdown timeout, abandoning workers",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}

	p.mu.Lock()
	err := p.err
	p.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
