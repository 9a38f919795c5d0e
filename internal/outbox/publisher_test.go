package outbox

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestPublisherReusesOneWriterPerTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"})

	summary := p.writer("wellness_summary_events")
	require.Same(t, summary, p.writer("wellness_summary_events"))
	require.NotSame(t, summary, p.writer("wellness_summary_events_replay"))
	require.IsType(t, &kafka.Hash{}, summary.Balancer)
	require.Equal(t, publishBatchTimeout, summary.BatchTimeout)

	require.NoError(t, p.Close())
	require.Empty(t, p.writers)
}
