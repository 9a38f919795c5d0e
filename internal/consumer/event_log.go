package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/wellness/pkg/events"
)

// EventLogHandler appends summary events to summary_event_log. Redelivered
// records are keyed by topic, partition and offset and stored once.
type EventLogHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewEventLogHandler constructs a handler backed by the provided pool.
func NewEventLogHandler(pool *pgxpool.Pool, logger *slog.Logger) *EventLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLogHandler{pool: pool, logger: logger}
}

// Handle stores summary.updated payloads and ignores other event types.
func (h *EventLogHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.SummaryUpdatedType {
		h.logger.Debug("ignoring event", slog.String("event_type", msg.EventType))
		return nil
	}

	evt, windowEnd, err := decodeSummaryUpdated(msg.Payload)
	if err != nil {
		return err
	}

	tag, err := h.pool.Exec(ctx,
		`INSERT INTO summary_event_log (event_key, snapshot_id, window_end, days, payload)
         VALUES ($1,$2,$3,$4,$5)
         ON CONFLICT (event_key) DO NOTHING`,
		EventKey(msg), evt.SnapshotID, windowEnd, evt.Days, []byte(msg.Payload),
	)
	if err != nil {
		return fmt.Errorf("insert summary event: %w", err)
	}
	duplicate := tag.RowsAffected() == 0
	if duplicate {
		h.logger.Info("duplicate summary event skipped", slog.String("event_key", EventKey(msg)))
	}
	recordLogged(windowEnd, duplicate)
	return nil
}

// EventKey identifies a Kafka record across redeliveries.
func EventKey(msg Message) string {
	return fmt.Sprintf("%s:%d:%d", msg.Topic, msg.Partition, msg.Offset)
}

func decodeSummaryUpdated(payload json.RawMessage) (events.SummaryUpdated, time.Time, error) {
	var evt events.SummaryUpdated
	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, time.Time{}, fmt.Errorf("decode summary event: %w", err)
	}
	if evt.SnapshotID == "" {
		return evt, time.Time{}, fmt.Errorf("decode summary event: missing snapshot_id")
	}
	windowEnd, err := time.Parse(time.DateOnly, evt.WindowEnd)
	if err != nil {
		return evt, time.Time{}, fmt.Errorf("decode summary event: window_end: %w", err)
	}
	return evt, windowEnd, nil
}
