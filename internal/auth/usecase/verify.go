package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/ratelimit"
)

type VerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,numeric"`
}

type VerifyOutput struct {
	Identity    entity.Identity
	AccessToken string
}

// Verify checks a submitted passcode against the outstanding challenge and,
// on success, clears the challenge, activates the identity, and issues a
// session token.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidIdentity(err, nil)
	}
	if len(in.Code) != s.generator.Digits() {
		return nil, goerror.NewInvalidIdentity(nil, map[string]string{
			"code": "must be " + strconv.Itoa(s.generator.Digits()) + " digits",
		})
	}

	p := s.policy()
	now := s.clock.Now()

	count, oldest, err := s.limiter.Reserve(ctx, in.Email, ratelimit.KindVerify, now, p.verifyWindow)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reserve verification attempt", "email", in.Email, "error", err)
		return nil, goerror.NewUnavailable(err)
	}
	if count > p.verifyCeiling {
		return nil, goerror.NewRateLimited("Too many verification requests", retryAfterAt(oldest, p.verifyWindow, now))
	}

	var out VerifyOutput

	err = s.casAttempt(ctx, p, func(ctx context.Context) error {
		rec, err := s.store.GetByEmail(ctx, in.Email)
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewNotFound("No outstanding passcode")
		}
		if err != nil {
			return err
		}
		if rec.Challenge == nil {
			return goerror.NewNotFound("No outstanding passcode")
		}

		if rec.Challenge.Expired(now) {
			if err := s.store.CompareAndSwap(ctx, clearChallenge(rec, now)); err != nil {
				return err
			}
			return goerror.NewExpired("Passcode has expired")
		}

		// The ceiling locks out further guesses on this challenge, correct
		// code included. The user must request a new one.
		if rec.AttemptCount >= p.maxAttempts {
			if err := s.store.CompareAndSwap(ctx, clearChallenge(rec, now)); err != nil {
				return err
			}
			return goerror.NewTooManyAttempts("Too many attempts, request a new passcode")
		}

		if !s.bcrypt.Verify(string(rec.Challenge.SecretHash), in.Code) {
			up := rec.Clone()
			up.AttemptCount++
			up.UpdatedAt = now
			if err := s.store.CompareAndSwap(ctx, up); err != nil {
				return err
			}
			return goerror.NewInvalidCode("Incorrect passcode")
		}

		up := clearChallenge(rec, now)
		up.Activated = true
		if err := s.store.CompareAndSwap(ctx, up); err != nil {
			return err
		}

		out.Identity = up
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	token, err := s.jwt.Generate(out.Identity.ID, out.Identity.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "identity_id", out.Identity.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	out.AccessToken = token

	return &out, nil
}

func clearChallenge(rec *entity.Identity, now time.Time) entity.Identity {
	up := rec.Clone()
	up.Challenge = nil
	up.AttemptCount = 0
	up.UpdatedAt = now
	return up
}
