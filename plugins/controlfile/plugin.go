// Package controlfile drives a lifecycle service from a plain text file.
// Writing "pause", "resume" or "stop" to the file applies the matching
// transition through the service handle.
package controlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/svcctl/pkg/lifecycle"
	"github.com/bft-labs/svcctl/pkg/log"
)

// Controller is the owner surface the plugin drives. *lifecycle.ServiceHandle
// satisfies it.
type Controller interface {
	Stop() (lifecycle.Status, error)
	Pause() (lifecycle.Status, error)
	Resume() (lifecycle.Status, error)
}

// Config holds configuration options for the control file plugin.
type Config struct {
	// Path is the control file. Its directory must exist.
	Path string

	// DebounceDelay is the delay to wait after a file change before reading it.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults for the given path.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Plugin watches the control file and applies commands written to it.
// Contents present before Start are not applied.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	controller    Controller
	logger        log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a control file plugin.
func New(cfg Config, controller Controller, logger log.Logger) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Plugin{
		path:          filepath.Clean(cfg.Path),
		debounceDelay: cfg.DebounceDelay,
		controller:    controller,
		logger:        logger,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "controlfile"
}

// Start begins watching. It fails if the file's directory cannot be watched.
func (p *Plugin) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.ctx = watchCtx
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("control file watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher and drops any pending debounced read.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceApply()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("control file watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceApply() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.applyFile)
}

func (p *Plugin) applyFile() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("read control file", log.String("path", p.path), log.Err(err))
		return
	}

	cmd, err := ParseCommand(string(data))
	if err != nil {
		p.logger.Warn("ignoring control file contents", log.Err(err))
		return
	}

	status, err := p.Apply(cmd)
	if err != nil {
		p.logger.Warn("control command applied without observers",
			log.Stringer("command", cmd),
			log.Stringer("status", status),
			log.Err(err),
		)
		return
	}
	p.logger.Info("control command applied",
		log.Stringer("command", cmd),
		log.Stringer("status", status),
	)
}

// Apply runs one command against the controller.
func (p *Plugin) Apply(cmd Command) (lifecycle.Status, error) {
	switch cmd {
	case CommandPause:
		return p.controller.Pause()
	case CommandResume:
		return p.controller.Resume()
	case CommandStop:
		return p.controller.Stop()
	default:
		return lifecycle.Status{}, fmt.Errorf("%w: %d", ErrUnknownCommand, int(cmd))
	}
}

var _ Controller = (*lifecycle.ServiceHandle)(nil)
