package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// fanout delivers one event to each sink independently, best-effort.
// A failing or saturated sink never blocks delivery to the others.
func fanout(ctx context.Context, log *slog.Logger, sinks []contract.EventSink, e event.Event) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			log.Debug("Sink delivery failed", "event", e.Name(), "error", err)
		}
	}
}
