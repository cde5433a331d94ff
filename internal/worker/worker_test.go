package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(refresherFunc(func(context.Context) error { return nil }), Config{}, testLogger())

	assert.Contains(t, w.config.WorkerID, "worker-")
	assert.Equal(t, 5*time.Minute, w.config.PollInterval)
	assert.Equal(t, 30*time.Second, w.config.JobTimeout)
}

func TestWorker_RefreshesUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	r := refresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	w := NewWorker(r, Config{PollInterval: 5 * time.Millisecond}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorker_SkipsTickWhileRefreshRunning(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := refresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})

	w := NewWorker(r, Config{PollInterval: 2 * time.Millisecond}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no overlapping refreshes")

	close(release)
	cancel()
	<-done
}

func TestWorker_RunRefreshAppliesTimeout(t *testing.T) {
	var deadline time.Time
	r := refresherFunc(func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return errors.New("source unavailable")
	})

	w := NewWorker(r, Config{JobTimeout: time.Second}, testLogger())
	before := time.Now()
	w.runRefresh(context.Background())

	assert.WithinDuration(t, before.Add(time.Second), deadline, 500*time.Millisecond)
}
