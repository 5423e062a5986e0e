package inbound

import (
	"context"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/auth/usecase"
	"github.com/plungelab/authgate/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) error
	SocialLogin(ctx context.Context, in usecase.SocialLoginInput) (*usecase.SocialLoginOutput, error)
	Me(ctx context.Context) (*entity.Identity, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/passwordless/start", end.PasswordlessStart)
	r.POST("/api/v1/auth/passwordless/verify", end.PasswordlessVerify)
	r.POST("/api/v1/auth/passwordless/resend", end.PasswordlessResend)

	r.POST("/api/v1/auth/social/:provider", end.SocialLogin)

	r.GET("/api/v1/auth/me", end.Me) // authenticated
}
