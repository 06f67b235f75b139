// Package metrics provides Prometheus metrics for the crateview server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Upload metrics
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateview_uploads_total",
			Help: "Total number of archive uploads",
		},
		[]string{"status"},
	)

	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crateview_upload_bytes_total",
			Help: "Total bytes of uploaded archives",
		},
	)

	// Archive walk metrics
	archiveEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateview_archive_entries_total",
			Help: "Archive members processed during tree extraction",
		},
		[]string{"result"},
	)

	// Query metrics
	queryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crateview_query_duration_seconds",
			Help:    "Time spent materializing table views",
			Buckets: prometheus.DefBuckets,
		},
	)

	viewCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateview_view_cache_requests_total",
			Help: "View cache lookups by result",
		},
		[]string{"result"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateview_exports_total",
			Help: "Exports of filtered row sets by format",
		},
		[]string{"format"},
	)

	openTabs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crateview_open_tabs",
			Help: "Number of currently open file tabs",
		},
	)
)

// RecordUpload counts one upload attempt and, when accepted, its size.
func RecordUpload(status string, bytes int) {
	uploadsTotal.WithLabelValues(status).Inc()
	if status == "accepted" {
		uploadBytesTotal.Add(float64(bytes))
	}
}

// RecordWalk counts the outcome of one archive walk.
func RecordWalk(added, skipped, dropped int) {
	archiveEntriesTotal.WithLabelValues("added").Add(float64(added))
	archiveEntriesTotal.WithLabelValues("skipped").Add(float64(skipped))
	archiveEntriesTotal.WithLabelValues("dropped").Add(float64(dropped))
}

// ObserveQuerySeconds records the duration of one view materialization.
func ObserveQuerySeconds(seconds float64) {
	queryDuration.Observe(seconds)
}

// RecordViewCache counts a view cache lookup ("hit" or "miss").
func RecordViewCache(result string) {
	viewCacheTotal.WithLabelValues(result).Inc()
}

// RecordExport counts one export by format ("csv" or "xlsx").
func RecordExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// SetOpenTabs updates the open tab gauge.
func SetOpenTabs(n int) {
	openTabs.Set(float64(n))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
