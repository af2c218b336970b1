package audit

import (
	"context"
	"log/slog"
)

// Worker drains routine events from a channel into the publisher. Routine
// here means informational reads whose loss on shutdown is acceptable;
// consequential operations call the publisher synchronously instead.
type Worker struct {
	publisher *Publisher
	inbox     <-chan Event
	logger    *slog.Logger
}

func NewWorker(publisher *Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "background audit append failed",
					"kind", event.Kind, "error", err)
			}
		}
	}
}
