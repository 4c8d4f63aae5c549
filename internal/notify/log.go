package notify

import (
	"context"
	"log/slog"
)

// LogDispatcher writes notifications to the log instead of a delivery channel.
// Default when no webhook endpoint is configured; also the test double.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, kind Kind, payload Payload) error {
	d.logger.InfoContext(ctx, "notification dispatched",
		"kind", string(kind),
		"payload", payload,
	)
	return nil
}
