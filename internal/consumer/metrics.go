package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	consumedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "consumed_total",
		Help:      "Summary events handled and committed.",
	}, []string{"topic", "event_type"})

	handlerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "handler_failures_total",
		Help:      "Summary events left uncommitted because the handler failed.",
	}, []string{"topic", "event_type"})

	undecodableRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "undecodable_total",
		Help:      "Records lacking schema registry framing or an event_type header; committed and skipped.",
	}, []string{"topic"})

	duplicateEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "duplicates_total",
		Help:      "Redelivered summary events already present in summary_event_log.",
	})

	latestWindowEnd = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "latest_window_end_timestamp_seconds",
		Help:      "Window end date of the most recently logged summary, as a Unix timestamp.",
	})
)

func init() {
	prometheus.MustRegister(consumedEvents, handlerFailures, undecodableRecords, duplicateEvents, latestWindowEnd)
}

func recordConsumed(msg Message) {
	consumedEvents.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordHandlerFailure(msg Message) {
	handlerFailures.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordUndecodable(topic string) {
	undecodableRecords.WithLabelValues(topic).Inc()
}

func recordLogged(windowEnd time.Time, duplicate bool) {
	if duplicate {
		duplicateEvents.Inc()
		return
	}
	latestWindowEnd.Set(float64(windowEnd.Unix()))
}
