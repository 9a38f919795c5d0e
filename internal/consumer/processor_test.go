package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/wellness/pkg/events"
)

const topic = "wellness_summary_events"

func framed(schemaID byte, payload string) []byte {
	return append([]byte{0, 0, 0, 0, schemaID}, payload...)
}

func summaryRecord(offset int64, value []byte) kafka.Message {
	return kafka.Message{
		Topic:     topic,
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Value:     value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.SummaryUpdatedType)},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	payload := `{"snapshot_id":"abc"}`
	reader := &stubReader{messages: []kafka.Message{summaryRecord(10, framed(42, payload))}}
	handler := &stubHandler{}

	before := testutil.ToFloat64(consumedEvents.WithLabelValues(topic, events.SummaryUpdatedType))

	err := NewProcessor(reader, handler, WithLogger(quietLogger())).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, events.SummaryUpdatedType, handler.last.EventType)
	require.Equal(t, 42, handler.last.SchemaID)
	require.Equal(t, int64(10), handler.last.Offset)
	require.JSONEq(t, payload, string(handler.last.Payload))
	require.InDelta(t, before+1, testutil.ToFloat64(consumedEvents.WithLabelValues(topic, events.SummaryUpdatedType)), 0.0001)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{summaryRecord(20, framed(9, `{}`))}}
	handler := &stubHandler{err: errors.New("boom")}

	before := testutil.ToFloat64(handlerFailures.WithLabelValues(topic, events.SummaryUpdatedType))

	err := NewProcessor(reader, handler, WithLogger(quietLogger())).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Zero(t, reader.commitCalls)
	require.InDelta(t, before+1, testutil.ToFloat64(handlerFailures.WithLabelValues(topic, events.SummaryUpdatedType)), 0.0001)
}

func TestProcessorCommitsUndecodableMessages(t *testing.T) {
	unframed := summaryRecord(30, []byte(`{"snapshot_id":"abc"}`))
	headerless := summaryRecord(31, framed(1, `{}`))
	headerless.Headers = nil

	reader := &stubReader{messages: []kafka.Message{unframed, headerless}}
	handler := &stubHandler{}

	before := testutil.ToFloat64(undecodableRecords.WithLabelValues(topic))

	err := NewProcessor(reader, handler, WithLogger(quietLogger())).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls)
	require.Equal(t, 2, reader.commitCalls)
	require.InDelta(t, before+2, testutil.ToFloat64(undecodableRecords.WithLabelValues(topic)), 0.0001)
}

func TestProcessorRetriesAfterFetchError(t *testing.T) {
	reader := &stubReader{
		failFirst: errors.New("broker unavailable"),
		messages:  []kafka.Message{summaryRecord(40, framed(1, `{}`))},
	}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler, WithLogger(quietLogger())).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.calls)
}

func TestProcessorStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{messages: []kafka.Message{summaryRecord(1, framed(1, `{}`))}}
	handler := &stubHandler{}

	require.ErrorIs(t, NewProcessor(reader, handler).Run(ctx), context.Canceled)
	require.Zero(t, handler.calls)
}

type stubReader struct {
	failFirst   error
	messages    []kafka.Message
	index       int
	commitCalls int
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.failFirst != nil {
		err := r.failFirst
		r.failFirst = nil
		return kafka.Message{}, err
	}
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.commitCalls += len(msgs)
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
