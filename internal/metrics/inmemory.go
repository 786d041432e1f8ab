package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered       uint64
	LoginsSucceeded       uint64
	LoginsFailed          uint64
	SessionsStarted       uint64
	SessionsEnded         uint64
	ListingsCreated       uint64
	ListingsUpdated       uint64
	ListingsDeleted       uint64
	Searches              uint64
	SearchDurationCount   uint64
	SearchDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered       atomic.Uint64
	loginsSucceeded       atomic.Uint64
	loginsFailed          atomic.Uint64
	sessionsStarted       atomic.Uint64
	sessionsEnded         atomic.Uint64
	listingsCreated       atomic.Uint64
	listingsUpdated       atomic.Uint64
	listingsDeleted       atomic.Uint64
	searches              atomic.Uint64
	searchDurationCount   atomic.Uint64
	searchDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:       m.usersRegistered.Load(),
		LoginsSucceeded:       m.loginsSucceeded.Load(),
		LoginsFailed:          m.loginsFailed.Load(),
		SessionsStarted:       m.sessionsStarted.Load(),
		SessionsEnded:         m.sessionsEnded.Load(),
		ListingsCreated:       m.listingsCreated.Load(),
		ListingsUpdated:       m.listingsUpdated.Load(),
		ListingsDeleted:       m.listingsDeleted.Load(),
		Searches:              m.searches.Load(),
		SearchDurationCount:   m.searchDurationCount.Load(),
		SearchDurationTotalNs: m.searchDurationTotalNs.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	switch status {
	case LoginSuccess:
		m.loginsSucceeded.Add(1)
	case LoginFailed:
		m.loginsFailed.Add(1)
	}
}

// IncSessionStarted increments session started counter.
func (m *InMemoryRecorder) IncSessionStarted() {
	m.sessionsStarted.Add(1)
}

// IncSessionEnded increments session ended counter.
func (m *InMemoryRecorder) IncSessionEnded() {
	m.sessionsEnded.Add(1)
}

// IncListingCreated increments listing created counter.
func (m *InMemoryRecorder) IncListingCreated() {
	m.listingsCreated.Add(1)
}

// IncListingUpdated increments listing updated counter.
func (m *InMemoryRecorder) IncListingUpdated() {
	m.listingsUpdated.Add(1)
}

// IncListingDeleted increments listing deleted counter.
func (m *InMemoryRecorder) IncListingDeleted() {
	m.listingsDeleted.Add(1)
}

// IncSearch increments the search counter.
func (m *InMemoryRecorder) IncSearch() {
	m.searches.Add(1)
}

// ObserveSearchDuration records search duration.
func (m *InMemoryRecorder) ObserveSearchDuration(duration time.Duration) {
	m.searchDurationCount.Add(1)
	m.searchDurationTotalNs.Add(duration.Nanoseconds())
}
