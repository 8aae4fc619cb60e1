package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/svcctl/internal/cliconfig"
	"github.com/bft-labs/svcctl/pkg/log"
)

// syncBuffer lets concurrent workers log into one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSimulatedUnit(t *testing.T) {
	ok := simulatedUnit(time.Millisecond, 0)
	if err := ok(context.Background()); err != nil {
		t.Errorf("unit with zero failure rate = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := simulatedUnit(time.Hour, 0)(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled unit = %v, want context.Canceled", err)
	}
}

func TestRun_MaxUnits(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	cfg.Workers = 2
	cfg.Unit = time.Millisecond
	cfg.MaxUnits = 3
	cfg.ShutdownTimeout = time.Second

	var buf syncBuffer
	logger, err := log.NewZerologAdapter(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, logger) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return")
	}

	out := buf.String()
	if !strings.Contains(out, "shutdown complete") {
		t.Errorf("missing shutdown log in %s", out)
	}
}

func TestRun_ControlFileStop(t *testing.T) {
	control := filepath.Join(t.TempDir(), "control")

	cfg := cliconfig.DefaultConfig()
	cfg.Workers = 2
	cfg.Unit = time.Millisecond
	cfg.ControlFile = control
	cfg.ShutdownTimeout = time.Second

	var buf syncBuffer
	logger, err := log.NewZerologAdapter(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, logger) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(buf.String(), "plugin started") {
		if time.Now().After(deadline) {
			t.Fatalf("plugin never started: %s", buf.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.WriteFile(control, []byte("stop\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return after stop command")
	}

	out := buf.String()
	for _, want := range []string{"controlfile", "plugin stopped", "shutdown complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
