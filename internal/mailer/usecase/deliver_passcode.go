package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plungelab/authgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

type DeliverPasscodeInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required"`
	TTL   time.Duration
}

// DeliverPasscode sends the login code email for a consumed passcode event.
// Malformed payloads are dropped after logging; a delivery failure is
// returned so the broker can redeliver.
func (s *Usecase) DeliverPasscode(ctx context.Context, in DeliverPasscodeInput) error {
	ctx, span := s.startSpan(ctx, "Usecase.DeliverPasscode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "dropping passcode event with invalid payload", "error", err)
		return nil
	}

	err := s.mailer.Send(ctx, mail.Message{
		From:     s.cfg.GetString("modules.mailer.from"),
		To:       []string{in.Email},
		Subject:  passcodeSubject(),
		TextBody: passcodeTextBody(in.Code, in.TTL),
		HTMLBody: passcodeHTMLBody(in.Code, in.TTL),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to deliver passcode email", "error", err)
		return err
	}

	return nil
}

func passcodeSubject() string {
	return "Your login code"
}

func passcodeTextBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Your one-time login code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		code, int(ttl.Minutes()),
	)
}

func passcodeHTMLBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>Your one-time login code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request it, ignore this email.</p>`,
		code, int(ttl.Minutes()),
	)
}
