package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryReserveCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	lim := NewMemory(time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Arrange: three attempts one minute apart.
	for i := range 3 {
		n, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, now.Add(time.Duration(i)*time.Minute), 5*time.Minute)
		if err != nil {
			t.Fatalf("reserve failed: %v", err)
		}
		if n != i+1 {
			t.Fatalf("reserve %d returned count %d, want %d", i, n, i+1)
		}
	}

	// Act: count with a window that excludes the first attempt.
	n, oldest, err := lim.Count(ctx, "a@x.com", KindIssue, now.Add(2*time.Minute), 90*time.Second)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}

	// Assert
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	if !oldest.Equal(now.Add(time.Minute)) {
		t.Fatalf("oldest = %v, want %v", oldest, now.Add(time.Minute))
	}
}

func TestMemoryKindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	lim := NewMemory(time.Hour)
	now := time.Now()

	if _, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, now, time.Minute); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	n, _, err := lim.Count(ctx, "a@x.com", KindVerify, now, time.Minute)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("verify count = %d, want 0", n)
	}
}

func TestMemoryPrunesBeyondHorizon(t *testing.T) {
	ctx := context.Background()
	lim := NewMemory(10 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, base, time.Hour); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	// A reserve 11 minutes later prunes the first entry even though the
	// queried window is larger than the horizon.
	n, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, base.Add(11*time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("count after prune = %d, want 1", n)
	}

	if len(lim.attempts["issue:a@x.com"]) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(lim.attempts["issue:a@x.com"]))
	}
}

func TestMemoryLast(t *testing.T) {
	ctx := context.Background()
	lim := NewMemory(time.Hour)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	last, err := lim.Last(ctx, "a@x.com", KindIssue)
	if err != nil {
		t.Fatalf("last failed: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("last on empty limiter = %v, want zero", last)
	}

	for _, at := range []time.Time{base, base.Add(2 * time.Minute), base.Add(time.Minute)} {
		if _, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, at, time.Hour); err != nil {
			t.Fatalf("reserve failed: %v", err)
		}
	}

	last, err = lim.Last(ctx, "a@x.com", KindIssue)
	if err != nil {
		t.Fatalf("last failed: %v", err)
	}
	if !last.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("last = %v, want %v", last, base.Add(2*time.Minute))
	}
}

func TestMemoryConcurrentReserves(t *testing.T) {
	ctx := context.Background()
	lim := NewMemory(time.Hour)
	now := time.Now()

	const workers = 32
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			if _, _, err := lim.Reserve(ctx, "a@x.com", KindIssue, now, time.Minute); err != nil {
				t.Errorf("reserve failed: %v", err)
			}
		})
	}
	wg.Wait()

	n, _, err := lim.Count(ctx, "a@x.com", KindIssue, now, time.Minute)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != workers {
		t.Fatalf("count = %d, want %d (lost updates)", n, workers)
	}
}
