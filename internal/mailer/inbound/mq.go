// Package inbound wires the mailer module to the message broker.
package inbound

import (
	"context"
	"log/slog"

	"github.com/plungelab/authgate/internal/mailer/usecase"
	"github.com/plungelab/authgate/internal/pkg/goroutine"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/messaging"
	"github.com/plungelab/authgate/internal/pkg/uid"
	"github.com/plungelab/authgate/internal/shared/event"
)

type uc interface {
	DeliverPasscode(ctx context.Context, in usecase.DeliverPasscodeInput) error
}

func RegisterMQConsumer(
	ctx context.Context,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	consumers := []struct {
		subject    string
		queueGroup string
		handler    messaging.Handler
	}{
		{
			subject:    event.PasscodeIssuedDestination,
			queueGroup: event.PasscodeIssuedConsumerMailer,
			handler:    mqHandler.PasscodeIssued,
		},
	}

	for _, consumer := range consumers {
		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "running consumer", "subject", consumer.subject, "queue_group", consumer.queueGroup)
			return messenger.Consume(pCtx, consumer.subject, consumer.queueGroup, consumer.handler)
		})
	}
}
