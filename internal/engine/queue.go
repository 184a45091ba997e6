package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// DefaultQueueCapacity bounds the signal queue when the config does not
// set one.
const DefaultQueueCapacity = 256

// defaultEnqueueWait is how long a producer blocks on a full queue before
// the signal is counted as dropped.
const defaultEnqueueWait = 2 * time.Second

// SignalQueue is the bounded FIFO channel between the evaluator and the
// risk gate. A full queue applies backpressure for a bounded wait and
// surfaces persistent fullness through the FullEvents counter instead of
// dropping signals silently.
type SignalQueue struct {
	ch         chan types.TradingSignal
	wait       time.Duration
	fullEvents atomic.Int64
}

// NewSignalQueue creates a queue with the given capacity. Non-positive
// capacities fall back to the default.
func NewSignalQueue(capacity int) *SignalQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	return &SignalQueue{
		ch:   make(chan types.TradingSignal, capacity),
		wait: defaultEnqueueWait,
	}
}

// Enqueue adds a signal, blocking up to the bounded wait when the queue
// is full. Context cancellation aborts the wait immediately.
func (q *SignalQueue) Enqueue(ctx context.Context, sig types.TradingSignal) error {
	select {
	case q.ch <- sig:
		return nil
	default:
	}

	q.fullEvents.Add(1)

	timer := time.NewTimer(q.wait)
	defer timer.Stop()

	select {
	case q.ch <- sig:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeEngineStopped, "enqueue aborted by shutdown", ctx.Err())
	case <-timer.C:
		return errors.Newf(errors.ErrCodeSignalQueueFull, "signal queue full for over %s, dropping signal %s", q.wait, sig.ID)
	}
}

// Dequeue removes the next signal, blocking until one arrives or the
// context is cancelled.
func (q *SignalQueue) Dequeue(ctx context.Context) (types.TradingSignal, bool) {
	select {
	case sig := <-q.ch:
		return sig, true
	case <-ctx.Done():
		return types.TradingSignal{}, false
	}
}

// Depth returns the number of queued signals.
func (q *SignalQueue) Depth() int {
	return len(q.ch)
}

// Capacity returns the queue's fixed capacity.
func (q *SignalQueue) Capacity() int {
	return cap(q.ch)
}

// FullEvents returns how many enqueues hit a full queue. A steadily
// growing count means the consumer is not keeping up.
func (q *SignalQueue) FullEvents() int64 {
	return q.fullEvents.Load()
}
