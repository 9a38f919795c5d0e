// Package postgres stores summary snapshots and their outbox events in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/wellness/internal/domain"
	"example.com/wellness/pkg/events"
)

const latestSlot = "latest"

// Repository provides Postgres-backed persistence for the latest snapshot and outbox events.
type Repository struct {
	pool  *pgxpool.Pool
	topic string
}

// NewRepository constructs a Repository publishing summary events to topic.
func NewRepository(pool *pgxpool.Pool, topic string) *Repository {
	return &Repository{pool: pool, topic: topic}
}

// Record replaces the stored snapshot and enqueues a summary.updated event in one transaction.
func (r *Repository) Record(ctx context.Context, snapshot domain.Snapshot) (err error) {
	summary, err := json.Marshal(snapshot.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO latest_summary (slot, snapshot_id, uploaded_at, row_count, window_start, window_end, summary, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
        ON CONFLICT (slot) DO UPDATE SET
            snapshot_id = EXCLUDED.snapshot_id,
            uploaded_at = EXCLUDED.uploaded_at,
            row_count = EXCLUDED.row_count,
            window_start = EXCLUDED.window_start,
            window_end = EXCLUDED.window_end,
            summary = EXCLUDED.summary,
            updated_at = NOW()`

	if _, err = tx.Exec(ctx, upsert,
		latestSlot,
		snapshot.ID,
		snapshot.UploadedAt,
		snapshot.Rows,
		snapshot.Summary.WindowStart,
		snapshot.Summary.WindowEnd,
		summary,
	); err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, snapshot.ID, events.SummaryUpdatedType, toSummaryUpdated(snapshot)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, snapshotID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		"summary",
		snapshotID,
		eventType,
		r.topic,
		r.topic+"-value",
		latestSlot,
		body,
		fmt.Sprintf("%s:%s", snapshotID, eventType),
	)
	return err
}

// Latest returns the stored snapshot, or nil when nothing was recorded yet.
func (r *Repository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	const query = `SELECT snapshot_id::text, uploaded_at, row_count, summary FROM latest_summary WHERE slot = $1`

	var (
		snapshot domain.Snapshot
		summary  []byte
	)
	err := r.pool.QueryRow(ctx, query, latestSlot).Scan(&snapshot.ID, &snapshot.UploadedAt, &snapshot.Rows, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(summary, &snapshot.Summary); err != nil {
		return nil, fmt.Errorf("decode stored summary: %w", err)
	}
	snapshot.UploadedAt = snapshot.UploadedAt.UTC()
	return &snapshot, nil
}

func toSummaryUpdated(s domain.Snapshot) events.SummaryUpdated {
	view := s.Summary.Rounded()
	return events.SummaryUpdated{
		SnapshotID:  s.ID,
		UploadedAt:  s.UploadedAt,
		Rows:        s.Rows,
		WindowStart: view.WindowStart.Format(time.DateOnly),
		WindowEnd:   view.WindowEnd.Format(time.DateOnly),
		Days:        view.Days,
		Summary: events.SummaryFigures{
			TotalActiveEnergyKcal: view.TotalActiveEnergyKcal,
			TotalSteps:            view.TotalSteps,
			TotalDistanceMi:       view.TotalDistanceMi,
			AvgExerciseMinPerDay:  view.AvgExerciseMinPerDay,
			StandGoalDays:         view.StandGoalDays,
			MoveGoalDays:          view.MoveGoalDays,
			RestingHRAvg:          view.RestingHRAvg,
			HRVMedianMs:           view.HRVMedianMs,
			SpO2MinPct:            view.SpO2MinPct,
		},
	}
}
