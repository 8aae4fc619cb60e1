package lifecycle

import (
	"sync"
	"testing"

	"github.com/bft-labs/svcctl/pkg/log"
)

// mockLogger implements log.Logger for testing.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*mockLogger) Debug(msg string, fields ...log.Field) {}
func (*mockLogger) Info(msg string, fields ...log.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...log.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
func (*mockLogger) Error(msg string, fields ...log.Field) {}

func (m *mockLogger) Warns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.warns...)
}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous StatusKind
	current  StatusKind
	request  ControlRequest
}

func (m *mockEmitter) OnStateChange(previous, current Status, request ControlRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous.Kind(), current.Kind(), request})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestStatusKind_String(t *testing.T) {
	tests := []struct {
		kind StatusKind
		want string
	}{
		{StatusRunning, "Running"},
		{StatusPaused, "Paused"},
		{StatusStopped, "Stopped"},
		{StatusKind(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("StatusKind(%d).String() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestControlRequest_String(t *testing.T) {
	tests := []struct {
		req  ControlRequest
		want string
	}{
		{RequestInit, "Init"},
		{RequestStop, "Stop"},
		{RequestPause, "Pause"},
		{RequestContinue, "Continue"},
		{ControlRequest(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.req.String(); got != tt.want {
			t.Errorf("ControlRequest(%d).String() = %s, want %s", tt.req, got, tt.want)
		}
	}
}

func TestStatus_ZeroValueIsRunning(t *testing.T) {
	var s Status
	if !s.IsRunning() || s.IsPaused() || s.IsStopped() {
		t.Errorf("zero Status = %v, want Running", s)
	}
	if s.PauseContext() != nil {
		t.Error("zero Status carries a PauseContext")
	}
}

func TestStatus_PausedString(t *testing.T) {
	s := pausedStatus(&PauseContext{epoch: 3})
	if got := s.String(); got != "Paused(epoch=3)" {
		t.Errorf("String() = %s, want Paused(epoch=3)", got)
	}
}

func TestControlContext_ObserveInitPanics(t *testing.T) {
	ctl := newControlContext()

	defer func() {
		if recover() == nil {
			t.Error("observing the Init request did not panic")
		}
	}()
	ctl.observe()
}

func TestControlContext_ObserveDivergencePanics(t *testing.T) {
	ctl := newControlContext()
	ctl.request = RequestStop

	defer func() {
		if recover() == nil {
			t.Error("request/status divergence did not panic")
		}
	}()
	ctl.observe()
}

func TestControlContext_PublishInitPanics(t *testing.T) {
	ctl := newControlContext()

	defer func() {
		if recover() == nil {
			t.Error("publishing Init did not panic")
		}
	}()
	_, _, _ = ctl.publish(RequestInit)
}
