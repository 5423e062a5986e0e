package db

import (
	"context"

	"github.com/plungelab/authgate/internal/auth/entity"
)

func (s *DB) GetByEmail(ctx context.Context, email string) (_ *entity.Identity, err error) {
	ctx, span := s.startSpan(ctx, "GetByEmail")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email)

	rec, err := scanIdentity(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}

func (s *DB) GetByID(ctx context.Context, id int64) (_ *entity.Identity, err error) {
	ctx, span := s.startSpan(ctx, "GetByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)

	rec, err := scanIdentity(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}

func (s *DB) GetByProvider(ctx context.Context, provider entity.Provider, providerID string) (_ *entity.Identity, err error) {
	ctx, span := s.startSpan(ctx, "GetByProvider")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE provider = $1 AND provider_id = $2`,
		int16(provider), providerID,
	)

	rec, err := scanIdentity(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}
