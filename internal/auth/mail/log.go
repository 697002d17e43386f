package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// LogMailer writes messages to the log instead of delivering them. It is the
// development driver; the logged body contains live links.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	l := m.Logger
	if l == nil {
		l = slogx.FromContext(ctx)
	}
	l.Info("mail not delivered (log driver)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.String("body", msg.Text),
	)
	return nil
}
