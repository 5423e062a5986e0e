// Package goroutine provides a bounded background task runner used for
// fire-and-forget work such as passcode delivery.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/plungelab/authgate/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs functions in goroutines, capped by a slot channel. Errors
// returned by tasks are collected and surfaced from Wait.
type Manager struct {
	wg    sync.WaitGroup
	slots chan struct{}

	errMu sync.Mutex
	errs  []error

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager that runs at most maxGoroutine tasks at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, maxGoroutine)}
}

// Go schedules f on its own goroutine. When the manager is draining or all
// slots are busy the task is dropped with a warning rather than queued.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.closeMu.RLock()
	defer g.closeMu.RUnlock()

	if g.closed {
		slog.WarnContext(pCtx, "task manager is draining, dropping task")
		return
	}

	select {
	case g.slots <- struct{}{}:
	default:
		slog.WarnContext(pCtx, "background task limit reached, dropping task")
		return
	}

	g.wg.Go(func() {
		defer func() {
			<-g.slots

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				paths := stacktrace.InternalPaths(stack)
				if len(paths) == 0 {
					slog.ErrorContext(pCtx, "panic occurred in background task", "stack", string(stack))
				} else {
					slog.ErrorContext(pCtx, "panic occurred in background task", "stack", paths)
				}
			}
		}()

		if err := pCtx.Err(); err != nil {
			slog.WarnContext(pCtx, "background task canceled before it started", "because", err)
			return
		}

		if err := f(pCtx); err != nil {
			g.errMu.Lock()
			g.errs = append(g.errs, err)
			g.errMu.Unlock()
		}
	})
}

// Wait stops accepting new tasks, blocks until the running ones finish, and
// returns their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.closeMu.Lock()
	g.closed = true
	g.closeMu.Unlock()

	g.wg.Wait()

	g.errMu.Lock()
	defer g.errMu.Unlock()
	return errors.Join(g.errs...)
}
