package goroutine

import (
	"context"
	"errors"
	"testing"
)

func TestManagerCollectsTaskErrors(t *testing.T) {
	m := NewManager(4)
	ctx := context.Background()
	errBoom := errors.New("boom")

	m.Go(ctx, func(ctx context.Context) error { return nil })
	m.Go(ctx, func(ctx context.Context) error { return errBoom })

	if err := m.Wait(); !errors.Is(err, errBoom) {
		t.Fatalf("wait = %v, want %v", err, errBoom)
	}
}

func TestManagerDropsTasksOverLimit(t *testing.T) {
	m := NewManager(1)
	ctx := context.Background()
	release := make(chan struct{})
	ran := make(chan int, 2)

	// The slot is taken synchronously, so while the first task holds it the
	// second submission must be dropped, not queued.
	m.Go(ctx, func(ctx context.Context) error {
		ran <- 1
		<-release
		return nil
	})
	m.Go(ctx, func(ctx context.Context) error {
		ran <- 2
		return nil
	})

	close(release)
	if err := m.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if got := <-ran; got != 1 {
		t.Fatalf("first task did not run, got %d", got)
	}
	select {
	case got := <-ran:
		t.Fatalf("dropped task ran: %d", got)
	default:
	}
}

func TestManagerRejectsTasksAfterWait(t *testing.T) {
	m := NewManager(2)
	if err := m.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	ran := false
	m.Go(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err := m.Wait(); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if ran {
		t.Fatal("task ran after the manager was drained")
	}
}

func TestManagerRecoversPanickingTask(t *testing.T) {
	m := NewManager(1)

	m.Go(context.Background(), func(ctx context.Context) error {
		panic("task exploded")
	})

	if err := m.Wait(); err != nil {
		t.Fatalf("wait after panic: %v", err)
	}
}
