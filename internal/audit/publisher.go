package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract for audit entries. Append-only; no
// deletes. ListBySession exists for the dev surface and tests, not the core.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Entry, error)
}

// Sink receives a best-effort mirror of each entry after the durable write,
// e.g. a Kafka topic feeding downstream forensics.
type Sink interface {
	Publish(entry Entry)
}

// Publisher captures structured audit entries. The store write is synchronous
// and must succeed before the calling operation returns its HTTP response;
// sink delivery is fire-and-forget.
type Publisher struct {
	store Store
	sink  Sink
}

type PublisherOption func(*Publisher)

// WithSink mirrors entries to an additional delivery channel.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists an entry. A store failure propagates to the caller: lifecycle
// transitions without a forensic trail must not be acknowledged.
func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := p.store.Append(ctx, entry); err != nil {
		return err
	}
	if p.sink != nil {
		p.sink.Publish(entry)
	}
	return nil
}

// List returns the entries recorded for a session.
func (p *Publisher) List(ctx context.Context, sessionID uuid.UUID) ([]Entry, error) {
	return p.store.ListBySession(ctx, sessionID)
}
