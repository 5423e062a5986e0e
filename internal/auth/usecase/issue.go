package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/ratelimit"
)

type IssueInput struct {
	Email string `validate:"required,email"`
}

// Issue starts a passwordless login: it generates a fresh passcode, stores
// only its hash on the identity record, and hands the plaintext to the
// delivery channel. The code is never part of the response.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) error {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidIdentity(err, nil)
	}

	return s.issue(ctx, in.Email)
}

func (s *Usecase) issue(ctx context.Context, email string) error {
	p := s.policy()
	now := s.clock.Now()

	// Reserve is atomic: the attempt is recorded and counted in one step,
	// so two concurrent requests cannot both slip under the ceiling.
	count, oldest, err := s.limiter.Reserve(ctx, email, ratelimit.KindIssue, now, p.issueWindow)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reserve issuance attempt", "email", email, "error", err)
		return goerror.NewUnavailable(err)
	}
	if count > p.issueCeiling {
		return goerror.NewRateLimited("Too many passcode requests", retryAfterAt(oldest, p.issueWindow, now))
	}

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "error", err)
		return goerror.NewServer(err)
	}

	secretHash, err := s.bcrypt.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash passcode", "error", err)
		return goerror.NewServer(err)
	}

	challenge := &entity.Challenge{
		SecretHash: secretHash,
		IssuedAt:   now,
		ExpiresAt:  now.Add(p.codeTTL),
	}

	err = s.casAttempt(ctx, p, func(ctx context.Context) error {
		rec, err := s.store.GetByEmail(ctx, email)
		if errors.Is(err, goerror.ErrNotFound) {
			// First issuance provisions a minimal profile. A concurrent
			// create for the same email conflicts and is retried as a swap.
			return s.store.Create(ctx, entity.Identity{
				ID:           s.uid.Generate(),
				Email:        email,
				Challenge:    challenge,
				LastIssuedAt: now,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		if err != nil {
			return err
		}

		up := rec.Clone()
		up.Challenge = challenge
		up.AttemptCount = 0
		up.LastIssuedAt = now
		up.UpdatedAt = now

		return s.store.CompareAndSwap(ctx, up)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store passcode challenge", "email", email, "error", err)
		return asAppError(err)
	}

	// Delivery failure fails the whole call. The stored challenge is
	// orphaned and simply expires; a retry issues a fresh code.
	if err := s.notifier.SendPasscode(ctx, email, code, p.codeTTL); err != nil {
		slog.ErrorContext(ctx, "failed to deliver passcode", "email", email, "error", err)
		return goerror.NewUnavailable(err)
	}

	return nil
}
