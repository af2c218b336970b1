package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var appendFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "haven_audit_append_failures_total",
	Help: "Audit appends that failed and aborted their operation.",
})

// Sink receives a copy of every durably appended event. Sinks are
// best-effort fan-out; the store append is the durability gate.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher appends events to the trail. Emit is fail-closed: callers must
// treat an error as "the operation did not happen" and abort.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

// Emit fills in identity, time, and severity, then blocks on the store
// append. Fan-out to sinks happens after durability and never fails the
// caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = event.Kind.Severity()
	}

	if err := p.store.Append(ctx, event); err != nil {
		appendFailures.Inc()
		return fmt.Errorf("append audit event %s: %w", event.Kind, err)
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit fan-out failed",
				"kind", event.Kind, "event_id", event.ID, "error", err)
		}
	}
	return nil
}
