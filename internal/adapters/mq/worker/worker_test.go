package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/queue"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/worker"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
	logging "github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

type mockPreparer struct {
	mu     sync.Mutex
	delay  time.Duration
	err    error
	titles []string
}

func (mp *mockPreparer) Prepare(ctx context.Context, g propertygraph.Graph, meta prepare.Metadata) (prepare.Bundle, error) {
	mp.mu.Lock()
	mp.titles = append(mp.titles, meta.Title)
	delay, err := mp.delay, mp.err
	mp.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return prepare.Bundle{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return prepare.Bundle{}, err
	}
	return prepare.Bundle{Name: meta.Title, Summary: prepare.Summary{Total: len(g.Relations)}}, nil
}

func (mp *mockPreparer) calls() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.titles)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		p := &mockPreparer{}
		tracker := prepare.NewTracker()
		w := worker.NewInMemoryWorker(q, p, tracker, worker.WithName("test-worker"), worker.WithTimeout(50*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is prepared successfully", func() {
			gen := tracker.Begin()
			q.jobs <- queue.Job{Generation: gen, Meta: prepare.Metadata{Title: "picks"}, EnqueuedAt: time.Now()}

			convey.Convey("Then the tracker holds the bundle", func() {
				convey.So(waitFor(func() bool { return tracker.State().Status == prepare.StatusSuccess }), convey.ShouldBeTrue)
				b, ok := tracker.Bundle()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(b.Name, convey.ShouldEqual, "picks")
			})
		})

		convey.Convey("When preparation fails", func() {
			p.err = errors.New("service unavailable")
			gen := tracker.Begin()
			q.jobs <- queue.Job{Generation: gen, EnqueuedAt: time.Now()}

			convey.Convey("Then the tracker reports the message without retrying", func() {
				convey.So(waitFor(func() bool { return tracker.State().Status == prepare.StatusError }), convey.ShouldBeTrue)
				convey.So(tracker.State().Message, convey.ShouldEqual, "service unavailable")
				time.Sleep(20 * time.Millisecond)
				convey.So(p.calls(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When preparation exceeds the timeout", func() {
			p.delay = time.Second
			gen := tracker.Begin()
			q.jobs <- queue.Job{Generation: gen, EnqueuedAt: time.Now()}

			convey.Convey("Then the attempt is reported as timed out", func() {
				convey.So(waitFor(func() bool { return tracker.State().Status == prepare.StatusError }), convey.ShouldBeTrue)
				convey.So(tracker.State().Message, convey.ShouldContainSubstring, "timed out")
			})
		})

		convey.Convey("When the attempt is reset before it completes", func() {
			p.delay = 20 * time.Millisecond
			gen := tracker.Begin()
			q.jobs <- queue.Job{Generation: gen, EnqueuedAt: time.Now()}
			tracker.Reset()

			convey.Convey("Then the late result is dropped", func() {
				convey.So(waitFor(func() bool { return p.calls() == 1 }), convey.ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				convey.So(tracker.State().Status, convey.ShouldEqual, prepare.StatusIdle)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it should shutdown gracefully and tolerate a second call", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose queue closes", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, &mockPreparer{}, prepare.NewTracker())
		go w.Run(context.Background())
		close(q.jobs)

		convey.Convey("Then Run returns", func() {
			select {
			case <-w.Done():
			case <-time.After(time.Second):
				t.Error("worker did not stop after its queue closed")
			}
		})
	})
}
