package seed

import "time"

// Defaults used by cmd/seed.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 35 * time.Second
	DefaultWorkers = 4
	DefaultTopN    = 3
)

const (
	taskStatusCompleted = "completed"
	taskStatusFailed    = "failed"

	// scoreEpsilon absorbs float noise when comparing scores across calls.
	scoreEpsilon = 1e-9
)
