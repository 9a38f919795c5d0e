package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"example.com/wellness/pkg/events"
)

func quietDispatcher(producer messageWriter, registry schemaRegistrar) *Dispatcher {
	return NewDispatcher(nil, producer, registry, time.Second, 10, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func summaryMessage(id int64) Message {
	return Message{
		EventID:       id,
		AggregateType: "summary",
		AggregateID:   "snap-1",
		EventType:     events.SummaryUpdatedType,
		Topic:         "wellness_summary_events",
		SchemaSubject: "wellness_summary_events-value",
		PartitionKey:  "latest",
		Payload:       json.RawMessage(`{"snapshot_id":"snap-1"}`),
	}
}

func TestWireFormatRoundTrip(t *testing.T) {
	frame := encodeWireFormat(258, []byte(`{"a":1}`))
	require.Equal(t, []byte{0, 0, 0, 1, 2}, frame[:5])

	id, payload, err := DecodeWireFormat(frame)
	require.NoError(t, err)
	require.Equal(t, 258, id)
	require.JSONEq(t, `{"a":1}`, string(payload))

	_, _, err = DecodeWireFormat([]byte{1, 0})
	require.Error(t, err)
}

func TestDeliverGroupsByTopicAndCachesSchemaIDs(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 42}
	d := quietDispatcher(producer, registry)

	require.NoError(t, d.deliver(context.Background(), []Message{summaryMessage(1), summaryMessage(2)}))
	require.NoError(t, d.deliver(context.Background(), []Message{summaryMessage(3)}))

	require.Len(t, registry.calls, 1)
	require.Len(t, producer.writes, 2)
	require.Equal(t, "wellness_summary_events", producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 2)

	msg := producer.writes[0].messages[0]
	require.Equal(t, []byte("latest"), msg.Key)
	id, payload, err := DecodeWireFormat(msg.Value)
	require.NoError(t, err)
	require.Equal(t, 42, id)
	require.JSONEq(t, `{"snapshot_id":"snap-1"}`, string(payload))
	require.Equal(t, "event_type", msg.Headers[0].Key)
}

func TestDeliverRejectsUnknownEventType(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 1}
	msg := summaryMessage(1)
	msg.EventType = "summary.deleted"

	err := quietDispatcher(producer, registry).deliver(context.Background(), []Message{msg})
	require.ErrorContains(t, err, "no schema metadata for event_type=summary.deleted")
	require.Empty(t, producer.writes)
	require.Empty(t, registry.calls)
}

func TestDeliverPropagatesFailures(t *testing.T) {
	err := quietDispatcher(&stubProducer{}, &stubRegistry{err: errors.New("registry down")}).
		deliver(context.Background(), []Message{summaryMessage(1)})
	require.ErrorContains(t, err, "registry down")

	err = quietDispatcher(&stubProducer{err: errors.New("broker down")}, &stubRegistry{id: 3}).
		deliver(context.Background(), []Message{summaryMessage(1)})
	require.ErrorContains(t, err, "broker down")
}

func TestSchemaRegistryRegistersMissingSubject(t *testing.T) {
	var registered map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/wellness_summary_events-value/versions/latest":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/subjects/wellness_summary_events-value/versions":
			_ = json.NewDecoder(r.Body).Decode(&registered)
			_, _ = w.Write([]byte(`{"id":7}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL+"/").EnsureSchema(context.Background(), "wellness_summary_events-value", summaryUpdatedSchema)
	require.NoError(t, err)
	require.Equal(t, 7, id)
	require.Equal(t, "JSON", registered["schemaType"])
}

func TestSchemaRegistryReusesLatestVersion(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		_, _ = w.Write([]byte(`{"id":11,"version":3}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "s", "{}")
	require.NoError(t, err)
	require.Equal(t, 11, id)
	require.Equal(t, []string{http.MethodGet}, methods)
}

func TestSchemaRegistryDoesNotRegisterOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "s", "{}")
	require.ErrorContains(t, err, "schema registry error 500")
	require.Equal(t, 1, calls)
}

func TestBackoffDelayCapsAtOneHour(t *testing.T) {
	m := NewDLQManager(nil, 3, time.Minute, nil)
	require.Equal(t, time.Minute, m.backoffDelay(1))
	require.Equal(t, 4*time.Minute, m.backoffDelay(3))
	require.Equal(t, time.Hour, m.backoffDelay(7))
	require.Equal(t, time.Hour, m.backoffDelay(64))
}

func TestSummarySchemaIsValidJSON(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(summaryUpdatedSchema), &schema))
	require.Equal(t, "SummaryUpdated", schema["title"])
}

func TestPublishOutcomesCountedPerEventType(t *testing.T) {
	batch := []Message{summaryMessage(1), summaryMessage(2)}
	published := publishedEvents.WithLabelValues(events.SummaryUpdatedType)
	failed := failedEvents.WithLabelValues(events.SummaryUpdatedType)
	beforePublished, beforeFailed := testutil.ToFloat64(published), testutil.ToFloat64(failed)

	recordPublished(batch)
	recordFailed(batch[:1])

	require.InDelta(t, beforePublished+2, testutil.ToFloat64(published), 0.0001)
	require.InDelta(t, beforeFailed+1, testutil.ToFloat64(failed), 0.0001)
}
