package health

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/testsupport"
)

type stubRecorder struct {
	mu       sync.Mutex
	recorded []domain.Snapshot
	stored   *domain.Snapshot
	err      error
}

func (r *stubRecorder) Record(_ context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, snapshot)
	return nil
}

func (r *stubRecorder) Latest(context.Context) (*domain.Snapshot, error) {
	return r.stored, r.err
}

type stubGenerator struct {
	summary domain.Summary7d
	user    string
	text    string
	err     error
}

func (g *stubGenerator) Generate(_ context.Context, summary domain.Summary7d, userName string) (string, error) {
	g.summary = summary
	g.user = userName
	return g.text, g.err
}

func export(dates ...string) string {
	rows := make([]testsupport.Row, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, testsupport.FullRow(d))
	}
	return testsupport.CSV(testsupport.Columns, rows...)
}

func fixedClock() time.Time {
	return time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)
}

func TestUploadReplacesLatest(t *testing.T) {
	recorder := &stubRecorder{}
	svc := NewService(nil, WithRecorder(recorder), WithClock(fixedClock))

	_, ok := svc.Latest()
	require.False(t, ok)

	snapshot, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-01", "2024-01-02", "2024-01-02")))
	require.NoError(t, err)
	require.NotEmpty(t, snapshot.ID)
	require.Equal(t, 3, snapshot.Rows)
	require.Equal(t, 2, snapshot.Summary.Days)
	require.EqualValues(t, 30000, snapshot.Summary.TotalSteps)
	require.Equal(t, fixedClock(), snapshot.UploadedAt)

	latest, ok := svc.Latest()
	require.True(t, ok)
	require.Equal(t, snapshot, latest)
	require.Len(t, recorder.recorded, 1)
	require.Equal(t, snapshot.ID, recorder.recorded[0].ID)

	second, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-05")))
	require.NoError(t, err)
	latest, _ = svc.Latest()
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, domain.Day(2024, time.January, 5), latest.Summary.WindowEnd)
}

func TestFailedUploadKeepsPreviousSnapshot(t *testing.T) {
	svc := NewService(nil)
	first, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-01")))
	require.NoError(t, err)

	cases := map[string]struct {
		body string
		want error
	}{
		"missing column": {body: testsupport.CSV(testsupport.Without(domain.FieldSteps), testsupport.FullRow("2024-01-02")), want: domain.ErrMissingColumn},
		"bad date":       {body: export("13/1/24"), want: domain.ErrBadDate},
		"header only":    {body: testsupport.CSV(testsupport.Columns), want: domain.ErrNoData},
		"empty":          {body: "", want: domain.ErrNoData},
		"bad value":      {body: testsupport.CSV(testsupport.Columns, testsupport.Row{domain.FieldDate: "2024-01-02", domain.FieldSteps: "many"}), want: domain.ErrBadValue},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), strings.NewReader(tc.body))
			require.ErrorIs(t, err, tc.want)

			latest, ok := svc.Latest()
			require.True(t, ok)
			require.Equal(t, first.ID, latest.ID)
		})
	}
}

func TestRecorderFailureKeepsPreviousSnapshot(t *testing.T) {
	recorder := &stubRecorder{}
	svc := NewService(nil, WithRecorder(recorder))
	first, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-01")))
	require.NoError(t, err)

	recorder.err = errors.New("connection refused")
	_, err = svc.Upload(context.Background(), strings.NewReader(export("2024-01-09")))
	require.ErrorContains(t, err, "record snapshot")

	latest, ok := svc.Latest()
	require.True(t, ok)
	require.Equal(t, first.ID, latest.ID)
}

func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	svc := NewService(nil)
	bodies := []string{
		export("2024-01-01"),
		export("2024-01-01", "2024-01-02", "2024-01-03"),
	}

	var (
		wg   sync.WaitGroup
		torn atomic.Bool
		stop = make(chan struct{})
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snapshot, ok := svc.Latest()
				if !ok {
					continue
				}
				// rows, days and steps always come from the same upload
				if snapshot.Rows != snapshot.Summary.Days || int64(snapshot.Rows)*10000 != snapshot.Summary.TotalSteps {
					torn.Store(true)
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		_, err := svc.Upload(context.Background(), strings.NewReader(bodies[i%len(bodies)]))
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
	require.False(t, torn.Load())
}

func TestRestoreSeedsEmptySlot(t *testing.T) {
	stored := &domain.Snapshot{ID: "restored", Rows: 7, Summary: domain.Summary7d{Days: 7}}
	svc := NewService(nil, WithRecorder(&stubRecorder{stored: stored}))

	require.NoError(t, svc.Restore(context.Background()))
	latest, ok := svc.Latest()
	require.True(t, ok)
	require.Equal(t, "restored", latest.ID)
}

func TestRestoreWithoutStoredSnapshot(t *testing.T) {
	svc := NewService(nil, WithRecorder(&stubRecorder{}))
	require.NoError(t, svc.Restore(context.Background()))
	_, ok := svc.Latest()
	require.False(t, ok)

	require.NoError(t, NewService(nil).Restore(context.Background()))
}

func TestRestoreFailure(t *testing.T) {
	svc := NewService(nil, WithRecorder(&stubRecorder{err: errors.New("db down")}))
	require.ErrorContains(t, svc.Restore(context.Background()), "db down")
}

func TestInsightsRequiresSummary(t *testing.T) {
	svc := NewService(nil, WithInsights(&stubGenerator{text: "keep going"}))
	_, err := svc.Insights(context.Background(), "Ana")
	require.ErrorIs(t, err, domain.ErrNoSummary)
}

func TestInsightsPassesRoundedSummaryAndDefaultName(t *testing.T) {
	gen := &stubGenerator{text: "Great week."}
	svc := NewService(nil, WithInsights(gen))
	_, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-01", "2024-01-02", "2024-01-03")))
	require.NoError(t, err)

	text, err := svc.Insights(context.Background(), "  ")
	require.NoError(t, err)
	require.Equal(t, "Great week.", text)
	require.Equal(t, DefaultUserName, gen.user)
	require.Equal(t, 3.1, *gen.summary.WalkSpeedAvgMph)

	_, err = svc.Insights(context.Background(), "Sam")
	require.NoError(t, err)
	require.Equal(t, "Sam", gen.user)
}

func TestInsightsFailuresAreUpstreamUnavailable(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Upload(context.Background(), strings.NewReader(export("2024-01-01")))
	require.NoError(t, err)

	_, err = svc.Insights(context.Background(), "Sam")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	svc = NewService(nil, WithInsights(&stubGenerator{err: errors.New("boom")}))
	_, err = svc.Upload(context.Background(), strings.NewReader(export("2024-01-01")))
	require.NoError(t, err)
	_, err = svc.Insights(context.Background(), "Sam")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	require.ErrorContains(t, err, "boom")
}
