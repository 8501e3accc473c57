package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"storefront/internal/platform/kafka/producer"
	"storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
)

//go:generate mockgen -source=kafka.go -destination=mocks/mocks.go -package=mocks Producer

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	ProduceAsync(msg *producer.Message) error
}

// KafkaPublisher queues violations in a ring buffer and drains them to Kafka
// from a background loop, so Publish never waits on the broker.
type KafkaPublisher struct {
	producer      Producer
	topic         string
	buffer        *RingBuffer
	batchSize     int
	flushInterval time.Duration
	wake          chan struct{}
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type KafkaOption func(*KafkaPublisher)

func WithBufferSize(n int) KafkaOption {
	return func(p *KafkaPublisher) {
		p.buffer = NewRingBuffer(n)
	}
}

func WithFlushInterval(d time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithKafkaMetrics(m *metrics.Metrics) KafkaOption {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func NewKafkaPublisher(prod Producer, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		producer:      prod,
		topic:         topic,
		buffer:        NewRingBuffer(10000),
		batchSize:     256,
		flushInterval: 250 * time.Millisecond,
		wake:          make(chan struct{}, 1),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish enqueues v without blocking.
func (p *KafkaPublisher) Publish(_ context.Context, v *models.Violation) {
	if p.buffer.Enqueue(v) {
		p.metrics.IncrementViolationsDropped()
	}
	if p.buffer.Len() >= p.batchSize {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what is left.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Drain()
		case <-p.wake:
			p.Drain()
		case <-ctx.Done():
			p.Drain()
			return nil
		}
	}
}

// Drain hands every buffered violation to the producer and reports how many
// were accepted.
func (p *KafkaPublisher) Drain() int {
	sent := 0
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return sent
		}
		for _, v := range batch {
			msg, err := p.message(v)
			if err != nil {
				p.logger.Error("failed to encode violation", "violation_id", v.ID, "error", err)
				continue
			}
			if err := p.producer.ProduceAsync(msg); err != nil {
				p.logger.Warn("failed to publish violation", "violation_id", v.ID, "error", err)
				continue
			}
			sent++
		}
	}
}

func (p *KafkaPublisher) message(v *models.Violation) (*producer.Message, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &producer.Message{
		Topic: p.topic,
		Key:   []byte(v.Class.Key(v.Identity)),
		Value: value,
		Headers: map[string]string{
			"event_type": EventRateLimitExceeded,
			"class":      v.Class.String(),
		},
	}, nil
}
