// Package ratelimit tracks recent attempts per identity and operation kind
// inside a sliding window.
//
// The limiter only records and counts; thresholds are policy and live with
// the caller. Reserve is the write path and is atomic per key: two
// concurrent callers cannot both observe a count below a threshold that the
// true post-update count exceeds.
package ratelimit

import (
	"context"
	"time"
)

// Kind distinguishes the operation being limited.
type Kind string

const (
	// KindIssue tracks passcode issuance requests.
	KindIssue Kind = "issue"
	// KindVerify tracks passcode verification requests.
	KindVerify Kind = "verify"
)

// DefaultHorizon is the retention horizon used when a limiter is built with
// a non-positive one. Entries older than the horizon are pruned on access
// and never counted.
const DefaultHorizon = time.Hour

// Limiter records attempts and answers sliding-window counts.
type Limiter interface {
	// Reserve records an attempt at now and returns the number of attempts
	// within [now - window, now] including the new one, plus the oldest
	// attempt inside that window (zero when the new attempt is the only one).
	Reserve(ctx context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error)

	// Count returns the attempts within [now - window, now] and the oldest
	// attempt inside the window, without recording anything.
	Count(ctx context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error)

	// Last returns the most recent recorded attempt, or the zero time.
	Last(ctx context.Context, key string, kind Kind) (time.Time, error)
}
