package hash

import "testing"

func TestBcryptHashAndVerify(t *testing.T) {
	h := NewBcrypt(4, "pepper") // min cost keeps the test fast

	digest, err := h.Hash("482910")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !h.Verify(string(digest), "482910") {
		t.Fatal("verify rejected the original plaintext")
	}
	if h.Verify(string(digest), "482911") {
		t.Fatal("verify accepted a different plaintext")
	}
}

func TestBcryptVerifyEmptyInputs(t *testing.T) {
	h := NewBcrypt(4, "")

	if h.Verify("", "482910") {
		t.Fatal("verify accepted an empty digest")
	}
	if h.Verify("$2a$04$invalid", "") {
		t.Fatal("verify accepted an empty plaintext")
	}
}

func TestBcryptPepperChangesOutcome(t *testing.T) {
	a := NewBcrypt(4, "pepper-a")
	b := NewBcrypt(4, "pepper-b")

	digest, err := a.Hash("482910")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if b.Verify(string(digest), "482910") {
		t.Fatal("verify succeeded across different peppers")
	}
}
