package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/jwt"
)

// Me returns the identity record of the authenticated caller.
func (s *Usecase) Me(ctx context.Context) (*entity.Identity, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewInvalidToken(errors.New("authentication required"))
	}

	rec, err := s.store.GetByID(ctx, clm.IdentityID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewNotFound("Identity not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get identity by id", "identity_id", clm.IdentityID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}
