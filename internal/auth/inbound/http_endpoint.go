package inbound

import (
	"github.com/plungelab/authgate/internal/auth/usecase"
	"github.com/plungelab/authgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for passwordless and social login.
type HTTPEndpoint struct {
	uc uc
}

// PasswordlessStart issues a passcode to the given email. The response is a
// bare acknowledgment; the code travels only through the delivery channel.
func (h *HTTPEndpoint) PasswordlessStart(r *router.Request) (any, error) {
	var req PasswordlessStartRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Issue(r.Context(), usecase.IssueInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return PasswordlessStartResponse{}, nil
}

// PasswordlessVerify exchanges a passcode for a session token.
func (h *HTTPEndpoint) PasswordlessVerify(r *router.Request) (any, error) {
	var req PasswordlessVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		AccessToken: resp.AccessToken,
		Identity:    toIdentityResponse(resp.Identity),
	}, nil
}

// PasswordlessResend issues a fresh passcode once the resend gap has passed.
func (h *HTTPEndpoint) PasswordlessResend(r *router.Request) (any, error) {
	var req PasswordlessResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Resend(r.Context(), usecase.ResendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return PasswordlessResendResponse{}, nil
}

// SocialLogin exchanges a federated identity token for a session token.
func (h *HTTPEndpoint) SocialLogin(r *router.Request) (any, error) {
	var req SocialLoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SocialLogin(r.Context(), usecase.SocialLoginInput{
		Provider: r.GetParam("provider"),
		Token:    req.Token,
	})
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		AccessToken: resp.AccessToken,
		Identity:    toIdentityResponse(resp.Identity),
	}, nil
}

// Me returns the authenticated caller's identity record.
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	rec, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	return toIdentityResponse(*rec), nil
}
