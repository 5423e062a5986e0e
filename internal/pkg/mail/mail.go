// Package mail defines the contract for sending email messages.
//
// Handlers and use cases work with the Mail interface and Message payload;
// the concrete delivery mechanism (SMTP here, a provider API elsewhere)
// stays swappable.
package mail

import (
	"context"
	"io"
)

// Message represents an email payload, provider-agnostic.
type Message struct {
	// From is an optional explicit sender; fallback depends on implementation.
	From string
	// To lists the recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body; preferred when HTMLBody is empty.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
