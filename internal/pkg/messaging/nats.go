package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/plungelab/authgate/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

var (
	// ErrSubjectRequired is returned when the subject is empty.
	ErrSubjectRequired = errors.New("messaging: subject is required")
	// ErrURLRequired is returned when the NATS server URL is missing.
	ErrURLRequired = errors.New("messaging: nats url is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned when the client has been closed.
	ErrClosed = errors.New("messaging: client is closed")
)

// NATSConfig configures the NATS client.
type NATSConfig struct {
	// URL is the NATS server address.
	URL string
	// Options are passed to the NATS client.
	Options []nats.Option
}

// NATS is a Messaging implementation backed by NATS core.
type NATS struct {
	conn   *nats.Conn
	closed atomic.Bool

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNATS connects to the broker and returns a client.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Publish sends a message to a NATS subject and flushes the connection, so a
// nil return means the broker accepted the message.
func (n *NATS) Publish(ctx context.Context, subject string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrSubjectRequired
	}
	if n.closed.Load() {
		return ErrClosed
	}

	nmsg := nats.NewMsg(subject)
	nmsg.Data = msg.Body
	for k, v := range msg.Headers {
		if k != "" {
			nmsg.Header.Set(k, v)
		}
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.Flush(); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}

	return nil
}

// Consume subscribes to a subject in a queue group and dispatches messages
// to handler until ctx is canceled.
func (n *NATS) Consume(ctx context.Context, subject, queueGroup string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if n.closed.Load() {
		return ErrClosed
	}

	sub, err := n.conn.QueueSubscribe(subject, queueGroup, func(m *nats.Msg) {
		msg := &natsMessage{msg: m, receivedAt: time.Now()}
		if herr := callHandlerWithRecover(ctx, func() error { return handler(ctx, msg) }); herr != nil {
			slog.ErrorContext(ctx, "messaging handler failed", "subject", m.Subject, "error", herr)
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	return n.conn.Flush()
}

// Close drains subscriptions and closes the NATS connection.
func (n *NATS) Close() error {
	if n.closed.Swap(true) {
		return nil
	}

	n.mu.Lock()
	subs := append([]*nats.Subscription{}, n.subs...)
	n.mu.Unlock()

	var closeErr error
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}

	if err := n.conn.Drain(); err != nil {
		closeErr = errors.Join(closeErr, err)
	}
	n.conn.Close()

	return closeErr
}

type natsMessage struct {
	msg        *nats.Msg
	receivedAt time.Time
}

func (m *natsMessage) Subject() string { return m.msg.Subject }

func (m *natsMessage) Body() []byte { return m.msg.Data }

func (m *natsMessage) Header(key string) string { return m.msg.Header.Get(key) }

func (m *natsMessage) ReceivedAt() time.Time { return m.receivedAt }

func callHandlerWithRecover(ctx context.Context, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			paths := stacktrace.InternalPaths(stack)
			if len(paths) == 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "panic", rvr, "stack", string(stack))
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "panic", rvr, "stack", paths)
			}
			err = fmt.Errorf("messaging: panic in handler: %v", rvr)
		}
	}()

	return fn()
}
