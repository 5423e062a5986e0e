package inbound

import (
	"time"

	"github.com/plungelab/authgate/internal/auth/entity"
)

type PasswordlessStartRequest struct {
	Email string `json:"email"`
}

type PasswordlessStartResponse struct{}

func (PasswordlessStartResponse) Message() string {
	return "We have sent a login code to your email."
}

type PasswordlessVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type PasswordlessResendRequest struct {
	Email string `json:"email"`
}

type PasswordlessResendResponse struct{}

func (PasswordlessResendResponse) Message() string {
	return "We have sent a new login code to your email."
}

type SocialLoginRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	AccessToken string           `json:"access_token"`
	Identity    IdentityResponse `json:"identity"`
}

func (SessionResponse) Message() string {
	return "You are now signed in."
}

type IdentityResponse struct {
	ID          int64     `json:"id,string"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PictureURL  string    `json:"picture_url,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Activated   bool      `json:"activated"`
	CreatedAt   time.Time `json:"created_at"`
}

func toIdentityResponse(rec entity.Identity) IdentityResponse {
	provider := ""
	if !rec.Provider.IsUnknown() {
		provider = rec.Provider.String()
	}

	return IdentityResponse{
		ID:          rec.ID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PictureURL:  rec.PictureURL,
		Provider:    provider,
		Activated:   rec.Activated,
		CreatedAt:   rec.CreatedAt,
	}
}
