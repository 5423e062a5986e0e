// Package hash provides one-way hashing and verification for stored secrets.
//
// Passcodes are never persisted in plaintext: store only the hash, then
// verify user input against it. Verification runs in time independent of
// where a mismatch occurs (the underlying primitive compares in constant
// time).
package hash

// Hash is the contract for hashing and verifying secrets.
type Hash interface {
	// Hash takes a plaintext string and returns its hashed representation.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the hashed value.
	Verify(hashed, plaintext string) bool
}
