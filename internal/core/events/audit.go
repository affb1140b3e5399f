package events

import (
	"context"
	"log/slog"
)

// AuditLogger returns a handler that writes every event it sees to the log.
// Subscribe it under Wildcard to get an audit trail of account lifecycles.
func AuditLogger(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "domain event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
}
