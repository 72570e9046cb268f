// Package worker implements the worker pool (C5): W workers, each
// draining its own channel of due task ids, loading the task and message,
// resolving a driver, attempting delivery, and driving the task's state
// machine forward (pending/retrying -> done|retrying, or a permanent skip).
package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"simple-push-service/internal/observability"
	"simple-push-service/internal/queue"
	"simple-push-service/internal/store"
	"simple-push-service/internal/transport"
)

// Pool owns the W worker goroutines and the channels the dispatcher feeds.
type Pool struct {
	size     int
	channels []chan int64
	tasks    *store.TaskRepo
	messages *store.MessageRepo
	factory  *transport.Factory
	queue    *queue.DelayQueue
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Size below 1 is coerced to 1 (spec.md §4.5: "W=0 is coerced to 1").
func NewPool(size int, tasks *store.TaskRepo, messages *store.MessageRepo, factory *transport.Factory, q *queue.DelayQueue, logger *zap.Logger, metrics *observability.Metrics) *Pool {
	if size < 1 {
		size = 1
	}
	channels := make([]chan int64, size)
	for i := range channels {
		channels[i] = make(chan int64, 256)
	}
	return &Pool{
		size:     size,
		channels: channels,
		tasks:    tasks,
		messages: messages,
		factory:  factory,
		queue:    q,
		logger:   logger,
		metrics:  metrics,
	}
}

// Channels exposes the send halves the dispatcher round-robins over.
func (p *Pool) Channels() []chan int64 {
	return p.channels
}

// Run starts all worker goroutines; each returns once its channel is
// closed by the dispatcher during shutdown.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.runOne(ctx, i, p.channels[i])
	}
}

func (p *Pool) runOne(ctx context.Context, idx int, ch <-chan int64) {
	for taskID := range ch {
		p.handle(ctx, taskID)
	}
	p.logger.Debug("worker stopped", zap.Int("worker", idx))
}

func (p *Pool) handle(ctx context.Context, taskID int64) {
	task, err := p.tasks.FindByID(ctx, taskID)
	if err != nil {
		// Not-found or transient DB error: the task is considered lost
		// rather than re-queued (spec.md §4.5 step 1, acknowledged weak
		// point in §9).
		p.logger.Error("load task failed, dropping", zap.Int64("task_id", taskID), zap.Error(err))
		p.metrics.TasksSkippedTotal.WithLabelValues("load_failed").Inc()
		return
	}

	message, err := p.messages.FindByID(ctx, task.MessageID)
	if err != nil {
		p.retryTask(ctx, task, fmt.Sprintf("load message failed: %v", err))
		return
	}

	driver, err := p.factory.Resolve(task.TransportType)
	if err != nil {
		p.logger.Warn("transport not found", zap.Int64("task_id", taskID), zap.String("transport_type", string(task.TransportType)))
		p.metrics.TasksSkippedTotal.WithLabelValues("transport_not_found").Inc()
		return
	}

	if err := driver.Push(ctx, task.ChatID, message.Title, message.Content); err != nil {
		p.retryTask(ctx, task, err.Error())
		return
	}

	if err := p.tasks.SetDone(ctx, task.ID); err != nil {
		p.logger.Error("mark task done failed", zap.Int64("task_id", taskID), zap.Error(err))
		return
	}
	p.metrics.TasksDeliveredTotal.Inc()
}

// retryTask computes the next fire-at with the Sidekiq-derived back-off
// formula (spec.md §4.5): delay_s = retry_count^4 + 15 + r*(retry_count+1),
// r uniform in [0, 30).
func (p *Pool) retryTask(ctx context.Context, task *store.Task, reason string) {
	delaySeconds := backoffSeconds(task.RetryCount)
	fireAt := time.Now().Unix() + delaySeconds

	if err := p.queue.Add(ctx, task.ID, fireAt); err != nil {
		p.logger.Error("re-queue failed", zap.Int64("task_id", task.ID), zap.Error(err))
	}
	if err := p.tasks.UpdateRetryState(ctx, task.ID, reason); err != nil {
		p.logger.Error("update retry state failed", zap.Int64("task_id", task.ID), zap.Error(err))
	}
	p.metrics.TasksRetriedTotal.Inc()
}

func backoffSeconds(retryCount int) int64 {
	rc := int64(retryCount)
	jitter := rand.Int63n(30)
	return rc*rc*rc*rc + 15 + jitter*(rc+1)
}
