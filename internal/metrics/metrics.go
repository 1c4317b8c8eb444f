// Package metrics exposes Prometheus instrumentation for the alert engine
// and the activity aggregator. Collectors register with the default
// registry; hosts that serve /metrics pick them up automatically.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namePrefix = "guardian_"

var (
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_events_recorded_total",
			Help: "Total number of monitoring events appended to the event log",
		},
		[]string{"kind"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_events_rejected_total",
			Help: "Total number of monitoring events rejected before reaching the log",
		},
		[]string{"reason"},
	)

	AlertsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_alerts_generated_total",
			Help: "Total number of alerts produced by the classifier",
		},
		[]string{"type", "severity"},
	)

	AlertsMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guardian_alerts_marked_read_total",
			Help: "Total number of alerts marked read",
		},
	)

	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardian_summary_duration_seconds",
			Help:    "Time spent building weekly activity summaries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)
)

// RecordEvent counts an event committed to the log.
func RecordEvent(kind string) {
	EventsRecorded.WithLabelValues(kind).Inc()
}

// RecordRejection counts an event the engine refused.
func RecordRejection(reason string) {
	EventsRejected.WithLabelValues(reason).Inc()
}

// RecordAlert counts a newly stored alert.
func RecordAlert(alertType, severity string) {
	AlertsGenerated.WithLabelValues(alertType, severity).Inc()
}

// RecordMarkRead counts an unread alert transitioning to read.
func RecordMarkRead() {
	AlertsMarkedRead.Inc()
}

// ObserveSummary records how long a summary took to build.
func ObserveSummary(d time.Duration) {
	SummaryDuration.Observe(d.Seconds())
}

// WriteText writes this package's metric families from the default
// registry in the Prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namePrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
