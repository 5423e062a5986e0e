package idp

import (
	"context"

	"github.com/plungelab/authgate/internal/auth/entity"
	"google.golang.org/api/idtoken"
)

type googleVerifier struct {
	audience string
}

func newGoogleVerifier(audience string) *googleVerifier {
	return &googleVerifier{audience: audience}
}

// verify validates a Google ID token (signature, expiry, audience) and maps
// its payload.
func (g *googleVerifier) verify(ctx context.Context, token string) (entity.Claims, error) {
	payload, err := idtoken.Validate(ctx, token, g.audience)
	if err != nil {
		return entity.Claims{}, err
	}

	return entity.Claims{
		SubjectID: payload.Subject,
		Email:     claimString(payload.Claims, "email"),
		Name:      claimString(payload.Claims, "name"),
		Picture:   claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
