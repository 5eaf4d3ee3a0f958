// Package mailx abstracts the out-of-band delivery channel one-time codes
// are sent over. The engine only ever sees the Mailer interface; the SMTP
// implementation is wiring.
package mailx

import "context"

// Message is a provider-agnostic email payload.
type Message struct {
	// From is an optional explicit sender; the implementation's configured
	// default applies when empty.
	From string
	// To lists the recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
}

// Mailer abstracts an email provider (SMTP, third-party API, etc).
type Mailer interface {
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
