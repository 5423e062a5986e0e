package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/ratelimit"
)

type ResendInput struct {
	Email string `validate:"required,email"`
}

// Resend issues a fresh passcode, additionally enforcing the minimum gap
// since the previous issuance. The ceiling check inside issue still applies.
func (s *Usecase) Resend(ctx context.Context, in ResendInput) error {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidIdentity(err, nil)
	}

	p := s.policy()
	now := s.clock.Now()

	last, err := s.limiter.Last(ctx, in.Email, ratelimit.KindIssue)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read last issuance", "email", in.Email, "error", err)
		return goerror.NewUnavailable(err)
	}
	if !last.IsZero() && now.Sub(last) < p.resendGap {
		retryAfter := last.Add(p.resendGap).Sub(now)
		return goerror.NewRateLimited("Passcode was just sent, wait before resending", retryAfter)
	}

	return s.issue(ctx, in.Email)
}
