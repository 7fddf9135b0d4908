// Package worker drains the preparation queue and reports outcomes to the
// preparation tracker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/queue"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	"github.com/0xJagger/poc-geo-tier-list/pkg/metrics"
)

const defaultJobTimeout = 5 * time.Second

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Recorder receives preparation outcomes. A false return means the attempt
// was superseded and the outcome was dropped.
type Recorder interface {
	Succeed(gen uint64, b prepare.Bundle) bool
	Fail(gen uint64, msg string) bool
}

// Worker processes preparation jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker runs one preparation at a time. Failed jobs are reported
// and not retried.
type InMemoryWorker struct {
	queue    Queue
	preparer prepare.Preparer
	recorder Recorder
	name     string
	timeout  time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p prepare.Preparer, r Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		preparer: p,
		recorder: r,
		name:     "worker",
		timeout:  defaultJobTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	metrics.UpdateWorkerCount(1)
	defer metrics.UpdateWorkerCount(0)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "preparation failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) processJob(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job travels by value through the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	b, err := w.preparer.Prepare(jobCtx, j.Graph, j.Meta)
	metrics.RecordPreparationLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("edit preparation timed out after %s", w.timeout)
		}
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "prepare_error")
		metrics.RecordErrorByType("prepare_error", "medium")
		if !w.recorder.Fail(j.Generation, msg) {
			metrics.RecordPreparation("stale")
			return nil
		}
		metrics.RecordPreparation("error")
		return fmt.Errorf("prepare %q: %w", j.Meta.Title, err)
	}

	if !w.recorder.Succeed(j.Generation, b) {
		metrics.RecordPreparation("stale")
		w.logger.Debug(ctx, "dropped superseded preparation", logger.Int("generation", int(j.Generation)))
		return nil
	}
	metrics.RecordPreparation("success")
	metrics.UpdatePreparedOperations(b.Summary.Total, b.Summary.Entities, b.Summary.Properties, b.Summary.Relations)
	w.logger.Info(ctx, "edits prepared",
		logger.String("name", b.Name),
		logger.Int("operations", b.Summary.Total),
		logger.Int("queued_ms", int(start.Sub(j.EnqueuedAt).Milliseconds())),
	)
	return nil
}
