package mail

import (
	"context"
	"log/slog"

	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

// LogTransport writes each message to the logger instead of delivering it.
// It is the development default.
type LogTransport struct {
	log *slog.Logger
}

// NewLogTransport logs through l, or through the request logger when l is nil.
func NewLogTransport(l *slog.Logger) *LogTransport {
	return &LogTransport{log: l}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(ctx context.Context, e Envelope) error {
	l := t.log
	if l == nil {
		l = logger.WithCtx(ctx)
	}
	l.Info("mail",
		"to", e.To,
		"from_name", e.FromName,
		"subject", e.Subject,
		"body", e.Body,
	)
	return nil
}
