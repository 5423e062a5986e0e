// Package idp verifies federated identity tokens and normalizes provider
// payloads into claims. Token validity is the provider's concern; this
// package only dispatches and maps.
package idp

import (
	"context"
	"errors"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/config"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

var errUnsupportedProvider = errors.New("unsupported identity provider")

// Verifier dispatches token verification to the configured providers.
type Verifier struct {
	google *googleVerifier
	auth0  *auth0Verifier
	ins    instrument.Instrumentation
}

func NewVerifier(cfg config.Config, ins instrument.Instrumentation) *Verifier {
	return &Verifier{
		google: newGoogleVerifier(cfg.GetString("modules.auth.idp.google_audience")),
		auth0:  newAuth0Verifier(cfg.GetString("modules.auth.idp.auth0_domain")),
		ins:    ins,
	}
}

func (v *Verifier) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return v.ins.Tracer("auth.outbound.idp").Start(ctx, name)
}

// VerifyToken validates the token with the named provider and returns the
// normalized claims.
func (v *Verifier) VerifyToken(ctx context.Context, provider entity.Provider, token string) (_ entity.Claims, err error) {
	ctx, span := v.startSpan(ctx, "VerifyToken")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	switch provider {
	case entity.ProviderGoogle:
		return v.google.verify(ctx, token)
	case entity.ProviderAuth0:
		return v.auth0.verify(ctx, token)
	default:
		return entity.Claims{}, errUnsupportedProvider
	}
}
