// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "failed"

	// Session metrics
	IncSessionStarted()
	IncSessionEnded()

	// Listing metrics
	IncListingCreated()
	IncListingUpdated()
	IncListingDeleted()

	// Search metrics
	IncSearch()
	ObserveSearchDuration(duration time.Duration)
}

// Login status values.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
)

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
