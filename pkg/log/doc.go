// Package log provides the logging abstraction used by svcctl components.
//
// The lifecycle, supervisor and controlfile packages never talk to a concrete
// logging library. They accept a Logger, which is satisfied by the zerolog
// adapter in this package or by the no-op logger used as the default.
//
// # Usage
//
//	logger, err := log.NewZerologAdapter(os.Stderr, "debug")
//	if err != nil {
//	    return err
//	}
//	handle, inst := lifecycle.New(lifecycle.WithLogger(logger))
//
// See version.go for the facade version.
package log
