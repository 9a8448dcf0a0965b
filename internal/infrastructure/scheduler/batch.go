package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tally.com/internal/infrastructure/logger"
)

const (
	// DefaultBatchSize caps how many items one processing round drains.
	DefaultBatchSize = 100
	// DefaultDelay is how long an armed round waits for more items.
	DefaultDelay = 200 * time.Millisecond
)

// Config tunes a batch Executor.
type Config struct {
	BatchSize int
	Delay     time.Duration
}

// Executor collects items from any number of concurrent producers and
// periodically hands an accumulated batch to a single consumer callback.
//
// At most one processing round runs at a time. A round is armed by the first
// item submitted while idle, fires after the configured delay, drains up to
// BatchSize items, and invokes the callback. Leftover items trigger an
// immediate follow-up round; an empty queue disarms the executor until the
// next item arrives. A panicking callback loses its batch but never stalls
// the executor.
type Executor[T any] struct {
	mu    sync.Mutex
	queue []T

	armed atomic.Bool

	batchSize int
	delay     time.Duration
	process   func([]T)
	logger    logger.Logger
}

// NewExecutor creates an executor delivering batches to process. Zero config
// fields fall back to the defaults.
func NewExecutor[T any](cfg Config, process func([]T), log logger.Logger) *Executor[T] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	return &Executor[T]{
		batchSize: cfg.BatchSize,
		delay:     cfg.Delay,
		process:   process,
		logger:    log,
	}
}

// Submit queues an item for asynchronous processing and arms a processing
// round if none is in flight. Never blocks on the consumer.
func (e *Executor[T]) Submit(item T) {
	e.mu.Lock()
	e.queue = append(e.queue, item)
	e.mu.Unlock()

	e.arm()
}

// Queued returns the number of items waiting to be drained.
func (e *Executor[T]) Queued() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Executor[T]) arm() {
	if e.armed.CompareAndSwap(false, true) {
		time.AfterFunc(e.delay, e.run)
	}
}

func (e *Executor[T]) run() {
	if batch := e.drain(); len(batch) > 0 {
		e.processBatch(batch)
	}

	if e.backlog() {
		// The drain was capped; run the next round without the delay.
		go e.run()
		return
	}

	e.armed.Store(false)
	// An item submitted between the backlog check and the disarm saw the
	// executor still armed and did not schedule a round. Re-check so it is
	// not stranded until the next Submit.
	if e.backlog() {
		e.arm()
	}
}

func (e *Executor[T]) drain() []T {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := min(len(e.queue), e.batchSize)
	batch := e.queue[:n:n]
	e.queue = e.queue[n:]
	return batch
}

func (e *Executor[T]) backlog() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue) > 0
}

func (e *Executor[T]) processBatch(batch []T) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.LogError(context.Background(), "batch callback panicked, batch dropped",
				fmt.Errorf("panic: %v", r),
				"batch_size", len(batch))
		}
	}()
	e.process(batch)
}
