package notify

import (
	"context"
	"time"

	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// SMTPSink delivers passcodes by sending the email itself.
type SMTPSink struct {
	mailer mail.Mail
	from   string
	ins    instrument.Instrumentation
}

func NewSMTPSink(mailer mail.Mail, from string, ins instrument.Instrumentation) *SMTPSink {
	return &SMTPSink{mailer: mailer, from: from, ins: ins}
}

func (s *SMTPSink) SendPasscode(ctx context.Context, email, code string, ttl time.Duration) error {
	ctx, span := s.ins.Tracer("auth.outbound.notify").Start(ctx, "SMTPSink.SendPasscode")
	defer span.End()

	err := s.mailer.Send(ctx, mail.Message{
		From:     s.from,
		To:       []string{email},
		Subject:  passcodeSubject(),
		TextBody: passcodeTextBody(code, ttl),
		HTMLBody: passcodeHTMLBody(code, ttl),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
