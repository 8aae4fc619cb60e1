// Package supervisor runs a pool of workers under the control of a
// lifecycle service.
//
// Each worker repeatedly runs one unit of work and races it against the
// service's transitions. A pause parks the worker until Resume, a stop ends
// it. Failed units are retried after an exponential backoff that is itself
// interrupted by transitions.
//
// # Usage
//
//	handle, inst := lifecycle.New()
//	defer handle.Close()
//
//	pool := supervisor.NewPool(supervisor.DefaultConfig(), inst, task,
//	    supervisor.WithLogger(logger))
//	pool.Start(ctx)
//
//	// ... handle.Pause(), handle.Resume() ...
//
//	handle.Stop()
//	if err := pool.WaitWithTimeout(30 * time.Second); err != nil {
//	    return err
//	}
package supervisor
