package db

import (
	"context"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
)

func (s *DB) Create(ctx context.Context, in entity.Identity) (err error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer func() { s.endSpan(span, err) }()

	secretHash, issuedAt, expiresAt := challengeArgs(in)

	_, err = s.conn.Exec(ctx, `
		INSERT INTO identities (
			id, email, display_name, picture_url, provider, provider_id, activated,
			challenge_secret_hash, challenge_issued_at, challenge_expires_at,
			attempt_count, last_issued_at, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		in.ID, in.Email, in.DisplayName, in.PictureURL, int16(in.Provider), in.ProviderID, in.Activated,
		secretHash, issuedAt, expiresAt,
		in.AttemptCount, nullableTime(in.LastIssuedAt), in.Version, in.CreatedAt, in.UpdatedAt,
	)

	return s.mapError(err)
}

// CompareAndSwap commits in only when the stored version is unchanged; the
// version column advances by one on success. The conditional WHERE makes the
// whole read-check-mutate a single atomic statement.
func (s *DB) CompareAndSwap(ctx context.Context, in entity.Identity) (err error) {
	ctx, span := s.startSpan(ctx, "CompareAndSwap")
	defer func() { s.endSpan(span, err) }()

	secretHash, issuedAt, expiresAt := challengeArgs(in)

	tag, err := s.conn.Exec(ctx, `
		UPDATE identities SET
			email = $2, display_name = $3, picture_url = $4, provider = $5, provider_id = $6,
			activated = $7, challenge_secret_hash = $8, challenge_issued_at = $9,
			challenge_expires_at = $10, attempt_count = $11, last_issued_at = $12,
			version = version + 1, updated_at = $13
		WHERE id = $1 AND version = $14`,
		in.ID, in.Email, in.DisplayName, in.PictureURL, int16(in.Provider), in.ProviderID,
		in.Activated, secretHash, issuedAt,
		expiresAt, in.AttemptCount, nullableTime(in.LastIssuedAt),
		in.UpdatedAt, in.Version,
	)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err = s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities WHERE id = $1)`, in.ID).Scan(&exists); err != nil {
			return s.mapError(err)
		}
		if !exists {
			return goerror.ErrNotFound
		}
		return goerror.ErrConflict
	}

	return nil
}
