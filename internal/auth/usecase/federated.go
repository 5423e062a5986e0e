package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
)

type SocialLoginInput struct {
	Provider string `validate:"required"`
	Token    string `validate:"required"`
}

type SocialLoginOutput struct {
	Identity    entity.Identity
	AccessToken string
}

// SocialLogin exchanges a federated identity token for a session: the token
// is verified by the provider adapter, the resulting claims are reconciled
// into the identity store, and a session token is issued.
func (s *Usecase) SocialLogin(ctx context.Context, in SocialLoginInput) (*SocialLoginOutput, error) {
	ctx, span := s.startSpan(ctx, "SocialLogin")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidIdentity(err, nil)
	}

	provider := entity.ProviderFromString(in.Provider)
	if provider.IsUnknown() {
		return nil, goerror.NewInvalidIdentity(nil, map[string]string{"provider": "unsupported provider"})
	}

	claims, err := s.idp.VerifyToken(ctx, provider, in.Token)
	if err != nil {
		slog.WarnContext(ctx, "federated token rejected", "provider", provider.String(), "error", err)
		return nil, goerror.NewInvalidToken(err)
	}

	rec, err := s.ReconcileFederatedIdentity(ctx, provider, claims)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(rec.ID, rec.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "identity_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SocialLoginOutput{Identity: *rec, AccessToken: token}, nil
}

// ReconcileFederatedIdentity upserts the identity record keyed on the
// (provider, subject) pair. Profile fields follow last-write-wins, but only
// for claim values that are actually present: an absent claim never blanks
// an existing field.
func (s *Usecase) ReconcileFederatedIdentity(ctx context.Context, provider entity.Provider, claims entity.Claims) (*entity.Identity, error) {
	ctx, span := s.startSpan(ctx, "ReconcileFederatedIdentity")
	defer span.End()

	if provider.IsUnknown() {
		return nil, goerror.NewInvalidIdentity(nil, map[string]string{"provider": "unsupported provider"})
	}
	if claims.SubjectID == "" {
		return nil, goerror.NewInvalidIdentity(nil, map[string]string{"subject_id": "is required"})
	}

	claims.Email = strings.TrimSpace(strings.ToLower(claims.Email))

	p := s.policy()
	now := s.clock.Now()

	var out entity.Identity

	err := s.casAttempt(ctx, p, func(ctx context.Context) error {
		rec, err := s.store.GetByProvider(ctx, provider, claims.SubjectID)
		if errors.Is(err, goerror.ErrNotFound) {
			id := entity.Identity{
				ID:          s.uid.Generate(),
				Email:       claims.Email,
				DisplayName: claims.Name,
				PictureURL:  claims.Picture,
				Provider:    provider,
				ProviderID:  claims.SubjectID,
				Activated:   true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.store.Create(ctx, id); err != nil {
				return err
			}
			out = id
			return nil
		}
		if err != nil {
			return err
		}

		up := rec.Clone()
		if claims.Email != "" {
			up.Email = claims.Email
		}
		if claims.Name != "" {
			up.DisplayName = claims.Name
		}
		if claims.Picture != "" {
			up.PictureURL = claims.Picture
		}
		up.Activated = true
		up.UpdatedAt = now

		if err := s.store.CompareAndSwap(ctx, up); err != nil {
			return err
		}
		out = up
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to reconcile federated identity",
			"provider", provider.String(), "subject_id", claims.SubjectID, "error", err)
		return nil, asAppError(err)
	}

	return &out, nil
}
