package orchestrator

import "errors"

var (
	// ErrMissingEngine is returned by New when no engine was configured.
	ErrMissingEngine = errors.New("orchestrator: engine was not configured")
	// ErrIncompleteRun reports that every unit succeeded but the merged
	// iteration count fell short of the requested total.
	ErrIncompleteRun = errors.New("orchestrator: units reported fewer iterations than requested")
	// ErrShutdown is returned by Start after Shutdown.
	ErrShutdown = errors.New("orchestrator: service was shut down")
)
