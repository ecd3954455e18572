package audit

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	id "ria/pkg/domain"
	"ria/pkg/requestcontext"
)

// Publisher appends events to the store and forwards them to the sinks. It
// never fails the business operation that emitted the event: sink errors are
// logged, and in async mode store errors are logged too.
type Publisher struct {
	store  Store
	sinks  []Sink
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them from a background
// goroutine. When the buffer is full events are dropped.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSink forwards every stored event to s.
func WithSink(s Sink) PublisherOption {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.persist(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", string(event.Action),
				"participant_id", event.ParticipantID.String(),
			)
		}
	}
}

// Close stops the async worker and waits for queued events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records event, filling in ID and Timestamp when unset. The caller's
// client label is attached when the request carried one.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if client := requestcontext.Client(ctx); client != "" {
		attrs := make(map[string]string, len(event.Attributes)+1)
		maps.Copy(attrs, event.Attributes)
		attrs[AttrClient] = client
		event.Attributes = attrs
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.async {
		select {
		case p.events <- event:
		default:
			p.logger.Warn("audit buffer full, event dropped",
				"action", string(event.Action),
				"participant_id", event.ParticipantID.String(),
			)
		}
		return nil
	}
	return p.persist(ctx, event)
}

func (p *Publisher) persist(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, s := range p.sinks {
		if err := s.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"error", err,
				"action", string(event.Action),
				"subject", event.Subject,
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, participantID id.ParticipantID, limit int) ([]Event, error) {
	return p.store.ListByParticipant(ctx, participantID, limit)
}
