// Package lifecycle provides a cooperative control plane for long-running work.
//
// One owner holds a ServiceHandle and drives the service through Running,
// Paused and Stopped. Any number of workers hold a ServiceInstance and react
// to those transitions without polling.
//
// # Usage
//
//	handle, inst := lifecycle.New(lifecycle.WithLogger(logger))
//	defer handle.Close()
//
//	go func() {
//	    for {
//	        ev, err := lifecycle.WaitFuture(ctx, inst, doUnit)
//	        if err != nil {
//	            return
//	        }
//	        if ev.Kind == lifecycle.EventFuture {
//	            continue
//	        }
//	        switch {
//	        case ev.Status.IsStopped():
//	            return
//	        case ev.Status.IsPaused():
//	            ev.Status.PauseContext().WaitResumeOrStop(ctx)
//	        }
//	    }
//	}()
//
//	handle.Pause()
//	handle.Resume()
//	handle.Stop()
//
// # State Machine
//
// Valid transitions:
//   - Running -> Paused (Pause)
//   - Running -> Stopped (Stop)
//   - Paused -> Running (Resume)
//   - Paused -> Stopped (Stop)
//
// Any other call is a no-op that returns the current status.
//
// # Epochs
//
// Every published transition advances the epoch by one and wakes every
// observer blocked at that moment. Observers never queue history: one that
// starts waiting late only sees the latest status.
//
// # Version
//
// Current version: 0.4.0
// Minimum compatible version: 0.3.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle
