package handler

import (
	"fmt"
	"net/http"

	"github.com/keja/keja/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "keja_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "keja_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "keja_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "keja_sessions_started_total %d\n", snap.SessionsStarted)
	writeMetric(w, "keja_sessions_ended_total %d\n", snap.SessionsEnded)

	writeMetric(w, "keja_listings_created_total %d\n", snap.ListingsCreated)
	writeMetric(w, "keja_listings_updated_total %d\n", snap.ListingsUpdated)
	writeMetric(w, "keja_listings_deleted_total %d\n", snap.ListingsDeleted)

	writeMetric(w, "keja_searches_total %d\n", snap.Searches)
	writeMetric(w, "keja_search_duration_seconds_count %d\n", snap.SearchDurationCount)
	writeMetric(w, "keja_search_duration_seconds_sum %.6f\n", float64(snap.SearchDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
