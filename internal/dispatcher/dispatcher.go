// Package dispatcher implements the single poller (C4) that drains due
// task ids from the delay queue and hands them to the worker pool in
// strict round-robin, with no work-stealing.
package dispatcher

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"simple-push-service/internal/observability"
)

// DueQueue is the subset of the delay queue the dispatcher needs; it
// exists so tests can substitute a fake without spinning up Redis.
type DueQueue interface {
	PopDue(ctx context.Context, now int64) ([]int64, error)
}

// Dispatcher is single-threaded w.r.t. the queue; running more than one
// instance concurrently is unsupported (spec.md §5).
type Dispatcher struct {
	queue    DueQueue
	channels []chan int64
	logger   *zap.Logger
	metrics  *observability.Metrics
	running  atomic.Bool
}

func New(q DueQueue, channels []chan int64, logger *zap.Logger, metrics *observability.Metrics) *Dispatcher {
	d := &Dispatcher{queue: q, channels: channels, logger: logger, metrics: metrics}
	d.running.Store(true)
	return d
}

// Stop clears the running flag; the loop observes it at the top of the
// next iteration, closes every worker channel, and returns.
func (d *Dispatcher) Stop() {
	d.running.Store(false)
}

// Run is the dispatcher's loop body (spec.md §4.4): read now, pop due ids,
// round-robin them onto worker channels, sleep 1s when the queue is empty
// or errors, and exit once Stop is called.
func (d *Dispatcher) Run(ctx context.Context) {
	next := 0
	for d.running.Load() {
		now := time.Now().Unix()

		ids, err := d.queue.PopDue(ctx, now)
		if err != nil {
			d.logger.Warn("pop_due failed, retrying after backoff", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		d.metrics.DispatchLoopTotal.Inc()
		d.metrics.QueueDepth.Set(float64(len(ids)))

		if len(ids) == 0 {
			sleep(ctx, time.Second)
			continue
		}

		for _, id := range ids {
			d.channels[next] <- id
			next = (next + 1) % len(d.channels)
		}
	}

	for _, ch := range d.channels {
		close(ch)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
