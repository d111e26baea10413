package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTask struct {
	ticks atomic.Int32
	panic bool
}

func (that *countingTask) Tick(_ context.Context) {
	that.ticks.Add(1)

	if that.panic {
		panic("boom")
	}
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	t.Run("ticks every task until cancelled", func(t *testing.T) {
		t.Parallel()

		// Given
		first, second := &countingTask{}, &countingTask{}
		scheduler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond, first, second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		// When
		go func() {
			defer close(done)
			scheduler.Run(ctx)
		}()

		// Then
		assert.Eventually(t, func() bool {
			return first.ticks.Load() >= 3 && second.ticks.Load() >= 3
		}, time.Second, 5*time.Millisecond)

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
	})

	t.Run("a panicking task does not stop the others", func(t *testing.T) {
		t.Parallel()

		// Given
		broken, healthy := &countingTask{panic: true}, &countingTask{}
		scheduler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond, broken, healthy)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// When
		go scheduler.Run(ctx)

		// Then
		assert.Eventually(t, func() bool {
			return broken.ticks.Load() >= 2 && healthy.ticks.Load() >= 2
		}, time.Second, 5*time.Millisecond)
	})
}

func TestNew_DefaultInterval(t *testing.T) {
	t.Parallel()

	scheduler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	assert.Equal(t, DefaultInterval, scheduler.interval)
}
