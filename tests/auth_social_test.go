package tests

import (
	"net/http"
	"testing"
)

func TestSocialLoginUnsupportedProvider(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/social/myspace", map[string]string{
		"token": "some-token",
	}, "")

	if status != http.StatusUnprocessableEntity {
		t.Fatalf("social status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "INVALID_IDENTITY" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestSocialLoginInvalidToken(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/social/google", map[string]string{
		"token": "definitely-not-a-valid-id-token",
	}, "")

	if status != http.StatusUnauthorized {
		t.Fatalf("social status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "INVALID_TOKEN" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestSocialLoginMissingToken(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/social/google", map[string]string{}, "")

	if status != http.StatusUnprocessableEntity {
		t.Fatalf("social status = %d, body = %s", status, body)
	}
}

func TestMeRequiresToken(t *testing.T) {
	status, body := doJSON(t, http.MethodGet, "/api/v1/auth/me", nil, "")

	if status != http.StatusUnauthorized {
		t.Fatalf("me status = %d, body = %s", status, body)
	}
}

func TestMeRejectsGarbageToken(t *testing.T) {
	status, body := doJSON(t, http.MethodGet, "/api/v1/auth/me", nil, "not.a.jwt")

	if status != http.StatusUnauthorized {
		t.Fatalf("me status = %d, body = %s", status, body)
	}
}
