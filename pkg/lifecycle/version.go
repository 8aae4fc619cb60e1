package lifecycle

// Version information for the lifecycle module.
const (
	// Version is the current version of the lifecycle module.
	Version = "0.4.0"

	// MinCompatibleVersion is the oldest release whose ServiceHandle and
	// ServiceInstance share the epoch semantics of this one.
	MinCompatibleVersion = "0.3.0"
)
