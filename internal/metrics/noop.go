package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncSessionStarted is a no-op.
func (n *NoopRecorder) IncSessionStarted() {}

// IncSessionEnded is a no-op.
func (n *NoopRecorder) IncSessionEnded() {}

// IncListingCreated is a no-op.
func (n *NoopRecorder) IncListingCreated() {}

// IncListingUpdated is a no-op.
func (n *NoopRecorder) IncListingUpdated() {}

// IncListingDeleted is a no-op.
func (n *NoopRecorder) IncListingDeleted() {}

// IncSearch is a no-op.
func (n *NoopRecorder) IncSearch() {}

// ObserveSearchDuration is a no-op.
func (n *NoopRecorder) ObserveSearchDuration(duration time.Duration) {}
