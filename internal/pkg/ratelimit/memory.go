package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
)

// MemoryLimiter implements Limiter with an in-process map, suitable for
// tests and single-node deployments. All operations hold the limiter mutex,
// so a Reserve observes every prior Reserve.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	horizon  time.Duration
}

// NewMemory returns a MemoryLimiter with the given retention horizon.
func NewMemory(horizon time.Duration) *MemoryLimiter {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		horizon:  horizon,
	}
}

func (m *MemoryLimiter) mapKey(key string, kind Kind) string {
	return string(kind) + ":" + key
}

// Reserve records an attempt and returns the in-window count and oldest entry.
func (m *MemoryLimiter) Reserve(_ context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mk := m.mapKey(key, kind)
	cutoff := now.Add(-m.horizon)

	kept := lo.Filter(m.attempts[mk], func(at time.Time, _ int) bool {
		return at.After(cutoff)
	})
	kept = append(kept, now)
	m.attempts[mk] = kept

	n, oldest := windowStats(kept, now, window)
	return n, oldest, nil
}

// Count returns the in-window count and oldest entry without recording.
func (m *MemoryLimiter) Count(_ context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, oldest := windowStats(m.attempts[m.mapKey(key, kind)], now, window)
	return n, oldest, nil
}

// Last returns the most recent recorded attempt, or the zero time.
func (m *MemoryLimiter) Last(_ context.Context, key string, kind Kind) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.attempts[m.mapKey(key, kind)]
	if len(entries) == 0 {
		return time.Time{}, nil
	}

	last := entries[0]
	for _, at := range entries[1:] {
		if at.After(last) {
			last = at
		}
	}
	return last, nil
}

func windowStats(entries []time.Time, now time.Time, window time.Duration) (int, time.Time) {
	start := now.Add(-window)

	var (
		n      int
		oldest time.Time
	)
	for _, at := range entries {
		if at.Before(start) || at.After(now) {
			continue
		}
		n++
		if oldest.IsZero() || at.Before(oldest) {
			oldest = at
		}
	}

	return n, oldest
}
