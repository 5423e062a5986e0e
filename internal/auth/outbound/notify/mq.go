package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/messaging"
	"github.com/plungelab/authgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// MQSink publishes the passcode to the broker; the mailer module performs
// the actual delivery. A failed publish fails the issuance, matching the
// direct sink's contract.
type MQSink struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMQSink(client messaging.Publisher, ins instrument.Instrumentation) *MQSink {
	return &MQSink{client: client, ins: ins}
}

func (m *MQSink) SendPasscode(ctx context.Context, email, code string, ttl time.Duration) error {
	ctx, span := m.ins.Tracer("auth.outbound.notify").Start(ctx, "MQSink.SendPasscode")
	defer span.End()

	body, err := json.Marshal(event.PasscodeIssuedMessage{
		Email:      email,
		Code:       code,
		TTLSeconds: int64(ttl.Seconds()),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, event.PasscodeIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: map[string]string{keyOfCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
