// Package messaging provides a small publish/consume client used to move
// events between modules.
//
// The current implementation wraps NATS; the interface keeps the rest of the
// application independent from the broker.
package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging is a client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a subject.
type Publisher interface {
	// Publish sends a message and returns only after the broker accepted it.
	Publish(ctx context.Context, subject string, msg OutgoingMessage) error
}

// Consumer consumes messages from a subject.
type Consumer interface {
	// Consume delivers messages to handler until ctx is canceled. Handlers
	// for one subject run in the given queue group, so multiple instances
	// share the load.
	Consume(ctx context.Context, subject, queueGroup string, handler Handler) error
}

// Handler processes a received message. A returned error is logged by the
// consumer; redelivery depends on the broker configuration.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Headers carries optional string metadata.
	Headers map[string]string
}

// Message is a received message.
type Message interface {
	// Subject returns the subject the message arrived on.
	Subject() string
	// Body returns the payload.
	Body() []byte
	// Header returns the first value for the given header key.
	Header(key string) string
	// ReceivedAt returns when the client received the message.
	ReceivedAt() time.Time
}
