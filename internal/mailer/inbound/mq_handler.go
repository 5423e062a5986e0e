package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/plungelab/authgate/internal/mailer/usecase"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/messaging"
	"github.com/plungelab/authgate/internal/pkg/uid"
	"github.com/plungelab/authgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cid := msg.Header(keyOfCorrelationID); cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) PasscodeIssued(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("mailer.inbound.mq").Start(ctx, "PasscodeIssued")
	defer span.End()

	// The body carries a plaintext passcode, so it is never logged.
	slog.InfoContext(ctx, "consume: passcode issued", "subject", msg.Subject())

	var payload event.PasscodeIssuedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of passcode issued", "error", err)
		return nil
	}

	if err := h.uc.DeliverPasscode(ctx, usecase.DeliverPasscodeInput{
		Email: payload.Email,
		Code:  payload.Code,
		TTL:   time.Duration(payload.TTLSeconds) * time.Second,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume passcode issued", "email", payload.Email, "error", err)
		return err
	}

	return nil
}
