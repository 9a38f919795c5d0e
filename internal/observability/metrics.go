// Package observability holds the Prometheus collectors for the upload and insight paths.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wellness"

var (
	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "uploads_total",
		Help:      "Total CSV uploads by result.",
	}, []string{"result"})
	uploadRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "rows",
		Help:      "Number of dated rows decoded per successful upload.",
		Buckets:   []float64{1, 7, 14, 30, 90, 365, 1000, 5000},
	})
	summaryWindowDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "window_days",
		Help:      "Populated days in the current summary window.",
	})
	lastSummaryGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "last_summary_timestamp_seconds",
		Help:      "Unix timestamp of the most recent summary swap.",
	})
	insightsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "insights",
		Name:      "requests_total",
		Help:      "Insight generation requests by result.",
	}, []string{"result"})
	insightsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "insights",
		Name:      "duration_seconds",
		Help:      "Latency of insight generation, retries included.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(uploadsTotal, uploadRows, summaryWindowDays, lastSummaryGauge, insightsTotal, insightsDuration)
}

// RecordUpload counts an upload outcome. A non-empty kind labels a failure.
func RecordUpload(kind string) {
	if kind == "" {
		kind = "success"
	}
	uploadsTotal.WithLabelValues(kind).Inc()
}

// RecordSummary observes a successful swap of the latest summary.
func RecordSummary(rows, days int, ts time.Time) {
	uploadRows.Observe(float64(rows))
	summaryWindowDays.Set(float64(days))
	if !ts.IsZero() {
		lastSummaryGauge.Set(float64(ts.Unix()))
	}
}

// RecordInsights counts an insight request and its latency.
func RecordInsights(result string, elapsed time.Duration) {
	insightsTotal.WithLabelValues(result).Inc()
	insightsDuration.Observe(elapsed.Seconds())
}
