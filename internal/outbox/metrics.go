package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// DLQ replay outcomes.
const (
	replayRequeued       = "requeued"
	replayRetryScheduled = "retry_scheduled"
	replayQuarantined    = "quarantined"
)

var (
	publishedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "published_total",
		Help:      "Summary events published to Kafka.",
	}, []string{"event_type"})

	failedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "failed_total",
		Help:      "Summary events whose delivery failed and were parked in outbox_dlq.",
	}, []string{"event_type"})

	deadLettered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "dead_lettered_total",
		Help:      "Summary events written to outbox_dlq, by destination topic.",
	}, []string{"topic"})

	dispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "dispatch_duration_seconds",
		Help:      "Time to claim, publish and mark one batch of summary events.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	replays = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "dlq_replays_total",
		Help:      "Outcomes of replaying parked summary events.",
	}, []string{"outcome", "event_type"})

	pendingReplays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "summary_events",
		Name:      "dlq_pending",
		Help:      "Parked summary events that are not quarantined.",
	})
)

func init() {
	prometheus.MustRegister(publishedEvents, failedEvents, deadLettered, dispatchDuration, replays, pendingReplays)
}

func recordPublished(messages []Message) {
	for _, msg := range messages {
		publishedEvents.WithLabelValues(msg.EventType).Inc()
	}
}

func recordFailed(messages []Message) {
	for _, msg := range messages {
		failedEvents.WithLabelValues(msg.EventType).Inc()
	}
}

func recordReplay(outcome string, entry dlqEntry) {
	replays.WithLabelValues(outcome, entry.EventType).Inc()
}

func refreshPendingReplays(ctx context.Context, pool *pgxpool.Pool) {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq WHERE quarantined_at IS NULL`).Scan(&count); err != nil {
		return
	}
	pendingReplays.Set(float64(count))
}
