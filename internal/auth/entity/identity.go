package entity

import (
	"time"
)

// Identity is the durable record for one distinct user identity, keyed by
// email or by a federated (provider, subject) pair.
type Identity struct {
	ID           int64
	Email        string
	DisplayName  string
	PictureURL   string
	Provider     Provider
	ProviderID   string
	Activated    bool
	Challenge    *Challenge
	AttemptCount int
	LastIssuedAt time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// a record freely before a conditional write.
func (i Identity) Clone() Identity {
	out := i
	if i.Challenge != nil {
		ch := *i.Challenge
		out.Challenge = &ch
	}
	return out
}

// Challenge is the outstanding unverified passcode state attached to an
// identity. It only ever holds the hash, never the plaintext code.
type Challenge struct {
	SecretHash []byte
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the validity window has passed.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Claims are the normalized fields extracted from a verified federated
// identity token.
type Claims struct {
	SubjectID string
	Email     string
	Name      string
	Picture   string
}
