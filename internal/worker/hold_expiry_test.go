package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type countingReleaser struct {
	calls    atomic.Int64
	released int
	err      error
}

func (c *countingReleaser) ReleaseExpiredHolds(_ context.Context) (int, error) {
	c.calls.Add(1)
	return c.released, c.err
}

func TestHoldExpiryWorker_SweepsUntilCancelled(t *testing.T) {
	t.Parallel()

	releaser := &countingReleaser{released: 1}
	logger, _ := test.NewNullLogger()
	w := NewHoldExpiryWorker(releaser, 5*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for releaser.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker never swept")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestHoldExpiryWorker_ClampsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()

	w := NewHoldExpiryWorker(&countingReleaser{}, 0, logger)
	if w.interval != defaultSweepInterval {
		t.Fatalf("expected zero interval clamped to %s, got %s", defaultSweepInterval, w.interval)
	}

	w = NewHoldExpiryWorker(&countingReleaser{}, -time.Second, logger)
	if w.interval != defaultSweepInterval {
		t.Fatalf("expected negative interval clamped to %s, got %s", defaultSweepInterval, w.interval)
	}
}

func TestHoldExpiryWorker_LogsSweepErrors(t *testing.T) {
	t.Parallel()

	releaser := &countingReleaser{err: errors.New("boom")}
	logger, hook := test.NewNullLogger()
	w := NewHoldExpiryWorker(releaser, time.Minute, logger)

	w.sweep(context.Background())

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", entry.Level)
	}
}
