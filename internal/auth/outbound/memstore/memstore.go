// Package memstore is the in-memory identity store. It implements the same
// conditional-write contract as the Postgres store and backs single-node
// deployments and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
)

// Store keeps identity records in process memory, indexed by id, email, and
// (provider, subject) pair. All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	byID       map[int64]entity.Identity
	byEmail    map[string]int64
	byProvider map[string]int64
}

func New() *Store {
	return &Store{
		byID:       make(map[int64]entity.Identity),
		byEmail:    make(map[string]int64),
		byProvider: make(map[string]int64),
	}
}

func providerKey(p entity.Provider, providerID string) string {
	return p.String() + ":" + providerID
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	rec := s.byID[id].Clone()
	return &rec, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*entity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := rec.Clone()
	return &out, nil
}

func (s *Store) GetByProvider(ctx context.Context, provider entity.Provider, providerID string) (*entity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProvider[providerKey(provider, providerID)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	rec := s.byID[id].Clone()
	return &rec, nil
}

// Create persists a new record. It fails with goerror.ErrConflict when the
// id, the email, or the (provider, subject) pair is already taken.
func (s *Store) Create(ctx context.Context, in entity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[in.ID]; ok {
		return goerror.ErrConflict
	}
	if in.Email != "" {
		if _, ok := s.byEmail[in.Email]; ok {
			return goerror.ErrConflict
		}
	}
	if !in.Provider.IsUnknown() {
		if _, ok := s.byProvider[providerKey(in.Provider, in.ProviderID)]; ok {
			return goerror.ErrConflict
		}
	}

	s.byID[in.ID] = in.Clone()
	if in.Email != "" {
		s.byEmail[in.Email] = in.ID
	}
	if !in.Provider.IsUnknown() {
		s.byProvider[providerKey(in.Provider, in.ProviderID)] = in.ID
	}

	return nil
}

// CompareAndSwap replaces the stored record only when its version still
// equals in.Version, then bumps the stored version by one.
func (s *Store) CompareAndSwap(ctx context.Context, in entity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if cur.Version != in.Version {
		return goerror.ErrConflict
	}

	up := in.Clone()
	up.Version = in.Version + 1

	// A non-empty email and a known provider pair stay unique across
	// records, the same contract the partial indexes give the SQL store.
	if up.Email != "" {
		if owner, ok := s.byEmail[up.Email]; ok && owner != up.ID {
			return goerror.ErrConflict
		}
	}
	if !up.Provider.IsUnknown() {
		if owner, ok := s.byProvider[providerKey(up.Provider, up.ProviderID)]; ok && owner != up.ID {
			return goerror.ErrConflict
		}
	}

	s.byID[in.ID] = up

	if cur.Email != up.Email {
		delete(s.byEmail, cur.Email)
	}
	if up.Email != "" {
		s.byEmail[up.Email] = up.ID
	}
	if !cur.Provider.IsUnknown() && providerKey(cur.Provider, cur.ProviderID) != providerKey(up.Provider, up.ProviderID) {
		delete(s.byProvider, providerKey(cur.Provider, cur.ProviderID))
	}
	if !up.Provider.IsUnknown() {
		s.byProvider[providerKey(up.Provider, up.ProviderID)] = up.ID
	}

	return nil
}
