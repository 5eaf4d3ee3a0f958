package mailx

import (
	"context"
	"log/slog"
)

// LogMailer is a Mailer for development environments without an SMTP relay.
// It logs delivery metadata only; bodies carry one-time codes and never
// reach the log stream.
type LogMailer struct {
	Logger *slog.Logger
}

// Send logs the would-be delivery and succeeds.
func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	l.Logger.Info("mail delivery skipped (log mailer)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
