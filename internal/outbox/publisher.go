package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// publishBatchTimeout flushes quickly: uploads produce one event at a time.
const publishBatchTimeout = 10 * time.Millisecond

// Publisher writes summary events to Kafka, opening one writer per topic on first use.
// Events are hashed on their partition key, so every summary.updated event (key "latest")
// lands on the same partition and consumers see snapshots in upload order.
type Publisher struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewPublisher creates a Publisher for brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{brokers: brokers, writers: make(map[string]*kafka.Writer)}
}

// WriteMessages publishes msgs to topic.
func (p *Publisher) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writer(topic).WriteMessages(ctx, msgs...)
}

func (p *Publisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(p.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           publishBatchTimeout,
			Compression:            kafka.Snappy,
			AllowAutoTopicCreation: true,
		}
		p.writers[topic] = w
	}
	return w
}

// Close flushes and closes every writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		errs = append(errs, w.Close())
		delete(p.writers, topic)
	}
	return errors.Join(errs...)
}
