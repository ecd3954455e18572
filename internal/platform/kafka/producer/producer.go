// Package producer publishes settlement events to Kafka.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kgo"
)

var errClosed = errors.New("producer is closed")

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Publisher is what the audit sink depends on.
type Publisher interface {
	Produce(ctx context.Context, msg *Message) error
}

type Producer struct {
	client       *kgo.Client
	logger       *slog.Logger
	closeTimeout time.Duration
	records      *prometheus.CounterVec

	mu     sync.RWMutex
	closed bool
}

func New(cfg Config, logger *slog.Logger, reg prometheus.Registerer) (*Producer, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		client:       client,
		logger:       logger,
		closeTimeout: cfg.CloseTimeout,
		records: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ria_kafka_records_total",
			Help: "Records produced, by topic and outcome",
		}, []string{"topic", "outcome"}),
	}, nil
}

// Produce blocks until the broker acknowledges msg at the configured level.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errClosed
	}

	if err := p.client.ProduceSync(ctx, toRecord(msg)).FirstErr(); err != nil {
		p.records.WithLabelValues(msg.Topic, "failed").Inc()
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	p.records.WithLabelValues(msg.Topic, "delivered").Inc()
	return nil
}

func toRecord(msg *Message) *kgo.Record {
	rec := &kgo.Record{Topic: msg.Topic, Key: msg.Key, Value: msg.Value}
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

// Close flushes buffered records, waiting at most the configured close
// timeout. It is safe to call more than once.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	ctx := context.Background()
	if p.closeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.closeTimeout)
		defer cancel()
	}
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka producer closed with unflushed records", "error", err)
	}
	p.client.Close()
	return nil
}

func (p *Producer) Health(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errClosed
	}
	return p.client.Ping(ctx)
}
