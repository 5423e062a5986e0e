// Package otp generates the short-lived numeric passcodes sent to users
// during passwordless login.
//
// Codes are fixed-width decimal strings drawn from crypto/rand, uniform over
// their space, with leading zeros preserved. Generation has no side effects
// and no output is derivable from prior outputs.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultDigits is the passcode width used when a Generator is built with a
// non-positive digit count.
const DefaultDigits = 6

// Generator produces one-time passcodes.
type Generator interface {
	// Generate returns a new fixed-width decimal passcode.
	Generate() (string, error)
	// Digits returns the passcode width.
	Digits() int
}

// NumericGenerator implements Generator using a cryptographically secure
// random source.
type NumericGenerator struct {
	digits int
	max    *big.Int
}

// NewNumeric returns a NumericGenerator producing codes of the given width.
func NewNumeric(digits int) *NumericGenerator {
	if digits <= 0 {
		digits = DefaultDigits
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	return &NumericGenerator{digits: digits, max: max}
}

// Generate returns a uniformly random decimal code, zero-padded to width.
func (g *NumericGenerator) Generate() (string, error) {
	// rand.Int rejection-samples, so the result is uniform over [0, 10^digits).
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}

	return fmt.Sprintf("%0*d", g.digits, n), nil
}

// Digits returns the configured passcode width.
func (g *NumericGenerator) Digits() int {
	return g.digits
}
