// Package db is the Postgres identity store. Conditional writes use an
// optimistic version column, matching the contract the usecase retries on.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	// 23505 unique violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

const identityColumns = `id, email, display_name, picture_url, provider, provider_id, activated,
	challenge_secret_hash, challenge_issued_at, challenge_expires_at,
	attempt_count, last_issued_at, version, created_at, updated_at`

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	var (
		rec          entity.Identity
		provider     int16
		secretHash   []byte
		issuedAt     pgtype.Timestamptz
		expiresAt    pgtype.Timestamptz
		lastIssuedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&rec.ID, &rec.Email, &rec.DisplayName, &rec.PictureURL, &provider, &rec.ProviderID, &rec.Activated,
		&secretHash, &issuedAt, &expiresAt,
		&rec.AttemptCount, &lastIssuedAt, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Provider = entity.Provider(provider)
	if secretHash != nil && issuedAt.Valid && expiresAt.Valid {
		rec.Challenge = &entity.Challenge{
			SecretHash: secretHash,
			IssuedAt:   issuedAt.Time,
			ExpiresAt:  expiresAt.Time,
		}
	}
	if lastIssuedAt.Valid {
		rec.LastIssuedAt = lastIssuedAt.Time
	}

	return &rec, nil
}

func challengeArgs(in entity.Identity) (secretHash []byte, issuedAt, expiresAt *time.Time) {
	if in.Challenge == nil {
		return nil, nil, nil
	}
	return in.Challenge.SecretHash, &in.Challenge.IssuedAt, &in.Challenge.ExpiresAt
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
