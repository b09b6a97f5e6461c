// Package observability exposes prometheus metrics for the upload pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	uploadsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "uploads_total",
		Help:      "Number of processed uploads, labeled by outcome category.",
	}, []string{"outcome"})

	recordsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "records_parsed_total",
		Help:      "Number of health records extracted from uploaded archives.",
	})

	skippedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "records_skipped_total",
		Help:      "Number of observation elements dropped for missing or invalid fields.",
	})

	filteredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "records_filtered_total",
		Help:      "Number of observation elements left out by the record type whitelist.",
	})

	pipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Time spent reading, parsing and projecting one upload.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	lastUploadGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthdash",
		Subsystem: "pipeline",
		Name:      "last_upload_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed upload.",
	})
)

func init() {
	prometheus.MustRegister(uploadsCounter, recordsCounter, skippedCounter, filteredCounter, pipelineDuration, lastUploadGauge)
}

// OutcomeOK labels uploads that produced a dashboard.
const OutcomeOK = "ok"

// RecordUpload counts a finished upload and its duration.
func RecordUpload(outcome string, elapsed time.Duration) {
	uploadsCounter.WithLabelValues(outcome).Inc()
	pipelineDuration.Observe(elapsed.Seconds())
}

// RecordParsed adds parse counts for a successful upload.
func RecordParsed(records, skipped, filtered int, at time.Time) {
	recordsCounter.Add(float64(records))
	skippedCounter.Add(float64(skipped))
	filteredCounter.Add(float64(filtered))
	if !at.IsZero() {
		lastUploadGauge.Set(float64(at.Unix()))
	}
}
