package tests

import (
	"net/http"
	"testing"
)

func TestPasswordlessStart(t *testing.T) {
	email := uniqueEmail("pwless.start")

	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/start", map[string]string{
		"email": email,
	}, "")

	if status != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", status, body)
	}
	env := decodeSuccess(t, body, nil)
	if env.Message == "" {
		t.Fatalf("expected a message in the envelope, body = %s", body)
	}
}

func TestPasswordlessStartInvalidEmail(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/start", map[string]string{
		"email": "not-an-email",
	}, "")

	if status != http.StatusUnprocessableEntity {
		t.Fatalf("start status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "INVALID_IDENTITY" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestPasswordlessStartMalformedBody(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/start", map[string]any{
		"email":      uniqueEmail("pwless.malformed"),
		"unexpected": true,
	}, "")

	if status != http.StatusBadRequest {
		t.Fatalf("start status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "INVALID_FORMAT" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestPasswordlessVerifyUnknownEmail(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/verify", map[string]string{
		"email": uniqueEmail("pwless.unknown"),
		"code":  "123456",
	}, "")

	if status != http.StatusNotFound {
		t.Fatalf("verify status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "NOT_FOUND" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestPasswordlessResendGap(t *testing.T) {
	email := uniqueEmail("pwless.resend")

	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/start", map[string]string{
		"email": email,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", status, body)
	}

	// An immediate resend lands inside the minimum gap.
	status, body = doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/resend", map[string]string{
		"email": email,
	}, "")
	if status != http.StatusTooManyRequests {
		t.Fatalf("resend status = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "RATE_LIMITED" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}

func TestPasswordlessStartCeiling(t *testing.T) {
	email := uniqueEmail("pwless.ceiling")

	var status int
	var body []byte
	for range 4 {
		status, body = doJSON(t, http.MethodPost, "/api/v1/auth/passwordless/start", map[string]string{
			"email": email,
		}, "")
	}

	if status != http.StatusTooManyRequests {
		t.Fatalf("start status after burst = %d, body = %s", status, body)
	}
	env := decodeError(t, body)
	if env.Code != "RATE_LIMITED" {
		t.Fatalf("error code = %q, body = %s", env.Code, body)
	}
}
