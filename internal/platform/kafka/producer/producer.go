// Package producer wraps a franz-go client for fire-and-forget event publishing.
package producer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/pkg/platform/sentinel"
	pstrings "storefront/pkg/platform/strings"
)

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type Config struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// DefaultConfig favours latency over durability: violation events are audit
// signals, not ledger entries.
func DefaultConfig(brokers string) Config {
	return Config{
		Brokers:         brokers,
		Acks:            "1",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}
}

// Producer publishes records asynchronously. Delivery failures are logged.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

func New(cfg Config, logger *slog.Logger) (*Producer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	var acks kgo.Acks
	switch cfg.Acks {
	case "0":
		acks = kgo.NoAck()
	case "1":
		acks = kgo.LeaderAck()
	default:
		acks = kgo.AllISRAcks()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(pstrings.DedupeAndTrim(strings.Split(cfg.Brokers, ","))...),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(cfg.Retries),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	if acks != kgo.AllISRAcks() {
		// Idempotent writes require acks=all.
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{client: client, logger: logger}, nil
}

// ProduceAsync buffers msg for background delivery and never blocks on the broker.
func (p *Producer) ProduceAsync(msg *Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("produce: %w", sentinel.ErrClosed)
	}

	record := &kgo.Record{Topic: msg.Topic, Key: msg.Key, Value: msg.Value}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	p.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("kafka delivery failed",
				"topic", r.Topic,
				"partition", r.Partition,
				"error", err,
			)
		}
	})
	return nil
}

// Ping checks broker connectivity; used by the readiness probe.
func (p *Producer) Ping(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return sentinel.ErrClosed
	}
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka ping: %w", err)
	}
	return nil
}

// Close flushes buffered records until ctx expires, then shuts the client down.
func (p *Producer) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.client.Flush(ctx)
	if err != nil && p.logger != nil {
		p.logger.Warn("kafka producer closed with unflushed messages", "error", err)
	}
	p.client.Close()
	return err
}
