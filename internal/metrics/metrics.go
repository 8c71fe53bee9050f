package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal counts probe steps by outcome
	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_checker_probes_total",
		Help: "Total number of probe requests by step and outcome",
	}, []string{"step", "outcome"})

	// CacheLookups counts validation cache lookups (hit=shared result, miss=probed)
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_checker_cache_lookups_total",
		Help: "Total number of validation cache lookups",
	}, []string{"result"})

	// SourceEntries tracks entry counts per source after each pipeline stage
	SourceEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_checker_source_entries",
		Help: "Number of entries per source after each stage",
	}, []string{"source", "stage"})

	// SourceFailures counts per-source stage failures
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_checker_source_failures_total",
		Help: "Total number of source failures by stage",
	}, []string{"source", "stage"})

	// Notifications counts report deliveries by outcome
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_checker_notifications_total",
		Help: "Total number of report notifications by outcome",
	}, []string{"notifier", "outcome"})

	// RunDuration holds the wall time of the last run
	RunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_checker_run_duration_seconds",
		Help: "Duration of the last pipeline run in seconds",
	})

	// LastRun holds the completion time of the last run
	LastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_checker_last_run_timestamp_seconds",
		Help: "Unix time the last pipeline run finished",
	})
)

// RecordProbe increments the probe counter for a step ("head", "partial")
// and outcome ("live", "dead", "error")
func RecordProbe(step, outcome string) {
	ProbesTotal.WithLabelValues(step, outcome).Inc()
}

// RecordCacheLookup increments the hit or miss counter
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}

// SetSourceEntries sets the entry count of a source after stage
func SetSourceEntries(source, stage string, count int) {
	SourceEntries.WithLabelValues(source, stage).Set(float64(count))
}

// RecordSourceFailure increments the failure counter of a source stage
func RecordSourceFailure(source, stage string) {
	SourceFailures.WithLabelValues(source, stage).Inc()
}

// RecordNotification increments the delivery counter of a notifier
func RecordNotification(notifier string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	Notifications.WithLabelValues(notifier, outcome).Inc()
}

// ObserveRun records the duration and completion time of a run
func ObserveRun(start, end time.Time) {
	RunDuration.Set(end.Sub(start).Seconds())
	LastRun.Set(float64(end.Unix()))
}

// WriteTextfile dumps the default registry in the text exposition format,
// for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
