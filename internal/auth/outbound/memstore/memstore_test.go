package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/goerror"
)

func TestCreateAndLookups(t *testing.T) {
	// Arrange
	s := New()
	ctx := context.Background()
	now := time.Now()

	rec := entity.Identity{
		ID:         1,
		Email:      "a@x.com",
		Provider:   entity.ProviderGoogle,
		ProviderID: "sub-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Act
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Assert
	byEmail, err := s.GetByEmail(ctx, "a@x.com")
	if err != nil || byEmail.ID != 1 {
		t.Fatalf("get by email: %v %+v", err, byEmail)
	}
	byID, err := s.GetByID(ctx, 1)
	if err != nil || byID.Email != "a@x.com" {
		t.Fatalf("get by id: %v %+v", err, byID)
	}
	byProvider, err := s.GetByProvider(ctx, entity.ProviderGoogle, "sub-1")
	if err != nil || byProvider.ID != 1 {
		t.Fatalf("get by provider: %v %+v", err, byProvider)
	}

	if _, err := s.GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Create(ctx, entity.Identity{ID: 1, Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Create(ctx, entity.Identity{ID: 2, Email: "a@x.com"}); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	if err := s.Create(ctx, entity.Identity{ID: 3, Provider: entity.ProviderAuth0, ProviderID: "s"}); err != nil {
		t.Fatalf("create federated: %v", err)
	}
	if err := s.Create(ctx, entity.Identity{ID: 4, Provider: entity.ProviderAuth0, ProviderID: "s"}); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected conflict on duplicate provider pair, got %v", err)
	}
}

func TestCompareAndSwap(t *testing.T) {
	// Arrange
	s := New()
	ctx := context.Background()

	if err := s.Create(ctx, entity.Identity{ID: 1, Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, _ := s.GetByID(ctx, 1)

	// Act
	up := rec.Clone()
	up.DisplayName = "Alpha"
	if err := s.CompareAndSwap(ctx, up); err != nil {
		t.Fatalf("cas: %v", err)
	}

	// Assert: the stored version moved on, so a writer holding the old
	// version must conflict.
	stale := rec.Clone()
	stale.DisplayName = "Beta"
	if err := s.CompareAndSwap(ctx, stale); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}

	cur, _ := s.GetByID(ctx, 1)
	if cur.DisplayName != "Alpha" {
		t.Fatalf("display name = %q, want %q", cur.DisplayName, "Alpha")
	}
	if cur.Version != rec.Version+1 {
		t.Fatalf("version = %d, want %d", cur.Version, rec.Version+1)
	}
}

func TestCompareAndSwapReindexesEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Create(ctx, entity.Identity{ID: 1, Email: "old@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, _ := s.GetByID(ctx, 1)

	up := rec.Clone()
	up.Email = "new@x.com"
	if err := s.CompareAndSwap(ctx, up); err != nil {
		t.Fatalf("cas: %v", err)
	}

	if _, err := s.GetByEmail(ctx, "old@x.com"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("old email should be unindexed, got %v", err)
	}
	if got, err := s.GetByEmail(ctx, "new@x.com"); err != nil || got.ID != 1 {
		t.Fatalf("new email lookup: %v %+v", err, got)
	}
}

func TestCompareAndSwapEmailTakenByOtherRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Record 1 owns the email; record 2 is a federated identity that tries
	// to claim it, as a social login with a matching claim email would.
	if err := s.Create(ctx, entity.Identity{ID: 1, Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, entity.Identity{ID: 2, Provider: entity.ProviderGoogle, ProviderID: "sub-2"}); err != nil {
		t.Fatalf("create federated: %v", err)
	}
	rec, _ := s.GetByID(ctx, 2)

	up := rec.Clone()
	up.Email = "a@x.com"
	if err := s.CompareAndSwap(ctx, up); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected conflict on taken email, got %v", err)
	}

	// The email index still points at its original owner and record 2 kept
	// its old state.
	got, err := s.GetByEmail(ctx, "a@x.com")
	if err != nil || got.ID != 1 {
		t.Fatalf("email owner: %v %+v", err, got)
	}
	cur, _ := s.GetByID(ctx, 2)
	if cur.Email != "" || cur.Version != rec.Version {
		t.Fatalf("record 2 mutated by failed cas: %+v", cur)
	}
}

func TestCompareAndSwapProviderPairTakenByOtherRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Create(ctx, entity.Identity{ID: 1, Provider: entity.ProviderAuth0, ProviderID: "sub-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, entity.Identity{ID: 2, Email: "b@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, _ := s.GetByID(ctx, 2)

	up := rec.Clone()
	up.Provider = entity.ProviderAuth0
	up.ProviderID = "sub-1"
	if err := s.CompareAndSwap(ctx, up); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected conflict on taken provider pair, got %v", err)
	}

	got, err := s.GetByProvider(ctx, entity.ProviderAuth0, "sub-1")
	if err != nil || got.ID != 1 {
		t.Fatalf("provider pair owner: %v %+v", err, got)
	}
}

func TestCompareAndSwapMissingRecord(t *testing.T) {
	s := New()

	err := s.CompareAndSwap(context.Background(), entity.Identity{ID: 99})

	if !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
