// Package health owns the upload pipeline and the process-wide latest summary slot.
package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"example.com/wellness/internal/aggregate"
	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/ingest"
	"example.com/wellness/internal/observability"
)

// DefaultUserName is used for insights when the caller supplies no display name.
const DefaultUserName = "Guest"

// Recorder durably stores snapshots. Record runs before a snapshot becomes visible.
type Recorder interface {
	Record(ctx context.Context, snapshot domain.Snapshot) error
	Latest(ctx context.Context) (*domain.Snapshot, error)
}

// InsightGenerator produces a coaching narrative for a summary.
type InsightGenerator interface {
	Generate(ctx context.Context, summary domain.Summary7d, userName string) (string, error)
}

// Option customises the Service.
type Option func(*Service)

// WithRecorder persists each snapshot before it replaces the latest slot.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithInsights wires the narrative generator.
func WithInsights(g InsightGenerator) Option {
	return func(s *Service) {
		s.insights = g
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service turns uploads into snapshots and serves the latest one to readers.
type Service struct {
	parser   *ingest.Parser
	recorder Recorder
	insights InsightGenerator
	logger   *slog.Logger
	now      func() time.Time

	// writeMu serialises uploads so record-then-swap pairs do not interleave.
	writeMu sync.Mutex
	latest  atomic.Pointer[domain.Snapshot]
}

// NewService constructs a Service. A nil parser selects the built-in header aliases.
func NewService(parser *ingest.Parser, opts ...Option) *Service {
	if parser == nil {
		parser = ingest.NewParser(nil)
	}
	s := &Service{
		parser: parser,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload parses a CSV export, reduces it to a summary and, once recorded, makes it the
// latest snapshot. On any failure the previous snapshot stays in place.
func (s *Service) Upload(ctx context.Context, r io.Reader) (domain.Snapshot, error) {
	snapshot, err := s.build(r)
	if err != nil {
		s.fail("summarize", err)
		return domain.Snapshot{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, snapshot); err != nil {
			err = fmt.Errorf("record snapshot: %w", err)
			s.fail("record", err)
			return domain.Snapshot{}, err
		}
	}
	s.latest.Store(&snapshot)

	observability.RecordUpload("")
	observability.RecordSummary(snapshot.Rows, snapshot.Summary.Days, snapshot.UploadedAt)
	s.logger.Info("summary updated",
		slog.String("snapshot_id", snapshot.ID),
		slog.Int("rows", snapshot.Rows),
		slog.Int("days", snapshot.Summary.Days),
		slog.String("window_start", snapshot.Summary.WindowStart.Format(time.DateOnly)),
		slog.String("window_end", snapshot.Summary.WindowEnd.Format(time.DateOnly)),
	)
	return snapshot, nil
}

func (s *Service) build(r io.Reader) (domain.Snapshot, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return domain.Snapshot{}, err
	}
	summary, err := aggregate.Summarize(rows)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{
		ID:         uuid.NewString(),
		UploadedAt: s.now().UTC(),
		Rows:       len(rows),
		Summary:    summary,
	}, nil
}

func (s *Service) fail(stage string, err error) {
	kind := domain.ErrorKind(err)
	if kind == "" {
		kind = "internal"
	}
	observability.RecordUpload(kind)
	s.logger.Warn("upload rejected", slog.String("stage", stage), slog.String("kind", kind), slog.Any("error", err))
}

// Latest returns the current snapshot, or false before the first successful upload.
func (s *Service) Latest() (domain.Snapshot, bool) {
	snapshot := s.latest.Load()
	if snapshot == nil {
		return domain.Snapshot{}, false
	}
	return *snapshot, true
}

// Restore seeds an empty slot from the recorder's last durable snapshot.
func (s *Service) Restore(ctx context.Context) error {
	if s.recorder == nil {
		return nil
	}
	snapshot, err := s.recorder.Latest(ctx)
	if err != nil {
		return fmt.Errorf("restore latest snapshot: %w", err)
	}
	if snapshot == nil {
		return nil
	}
	if s.latest.CompareAndSwap(nil, snapshot) {
		s.logger.Info("restored summary", slog.String("snapshot_id", snapshot.ID), slog.Time("uploaded_at", snapshot.UploadedAt))
	}
	return nil
}

// Insights asks the generator for a narrative about the latest summary.
func (s *Service) Insights(ctx context.Context, userName string) (string, error) {
	snapshot, ok := s.Latest()
	if !ok {
		return "", domain.ErrNoSummary
	}
	if s.insights == nil {
		return "", fmt.Errorf("%w: no generator configured", domain.ErrUpstreamUnavailable)
	}

	name := strings.TrimSpace(userName)
	if name == "" {
		name = DefaultUserName
	}

	start := time.Now()
	text, err := s.insights.Generate(ctx, snapshot.Summary.Rounded(), name)
	if err != nil {
		observability.RecordInsights("error", time.Since(start))
		s.logger.Error("insight generation failed", slog.String("snapshot_id", snapshot.ID), slog.Any("error", err))
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return "", err
	}
	observability.RecordInsights("success", time.Since(start))
	return text, nil
}
