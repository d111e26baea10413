package roomqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

var (
	ErrQueueClosed = errors.New("room queue is closed")
	ErrPanicked    = errors.New("room task panicked")
)

const DefaultSize = 64

// Queue runs the tasks of one room one after another on a single goroutine.
type Queue struct {
	logger *slog.Logger

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	onPanic func(recovered any)
}

// New - starts the worker goroutine. onPanic runs on the worker after a task
// panics, right before the queue closes itself.
func New(logger *slog.Logger, size int, onPanic func(recovered any)) *Queue {
	if size <= 0 {
		size = DefaultSize
	}

	queue := &Queue{
		logger:  logger,
		tasks:   make(chan func(), size),
		done:    make(chan struct{}),
		onPanic: onPanic,
	}

	go queue.run()

	return queue
}

// Submit - enqueues a task without waiting for it to run.
func (that *Queue) Submit(task func()) error {
	select {
	case <-that.done:
		return ErrQueueClosed
	default:
	}

	select {
	case that.tasks <- task:
		return nil
	case <-that.done:
		return ErrQueueClosed
	}
}

// Do - runs fn on the queue and waits for its result.
// Must not be called from a task of the same queue.
func (that *Queue) Do(ctx context.Context, fn func() error) error {
	select {
	case <-that.done:
		return ErrQueueClosed
	default:
	}

	result := make(chan error, 1)

	task := func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("%w: %v", ErrPanicked, rec)
				panic(rec)
			}
		}()

		result <- fn()
	}

	select {
	case that.tasks <- task:
	case <-that.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return fmt.Errorf("failed to enqueue task: %w", ctx.Err())
	}

	select {
	case err := <-result:
		return err
	case <-that.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrQueueClosed
		}
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for task: %w", ctx.Err())
	}
}

// Close - stops the worker after the running task. Pending tasks are dropped.
func (that *Queue) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *Queue) Done() <-chan struct{} {
	return that.done
}

func (that *Queue) run() {
	for {
		select {
		case <-that.done:
			return
		case task := <-that.tasks:
			select {
			case <-that.done:
				return
			default:
			}

			that.execute(task)
		}
	}
}

func (that *Queue) execute(task func()) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		that.logger.Error("room task panicked, closing room",
			"panic", fmt.Sprint(rec),
			"stack", string(debug.Stack()),
		)

		if that.onPanic != nil {
			that.onPanic(rec)
		}

		that.Close()
	}()

	task()
}
