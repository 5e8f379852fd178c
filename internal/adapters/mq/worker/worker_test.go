package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/codex/internal/adapters/mq/queue"
	"github.com/okian/codex/internal/adapters/mq/worker"
	"github.com/okian/codex/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type mockProcessor struct {
	mu     sync.Mutex
	seen   map[string]int
	errors map[string]error
	delay  time.Duration
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{seen: make(map[string]int), errors: make(map[string]error)}
}

func (m *mockProcessor) Process(_ context.Context, e worker.Event) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[e.ItemID]; ok {
		return err
	}
	m.seen[e.EventID]++
	return nil
}

func (m *mockProcessor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

func (m *mockProcessor) processed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[id] > 0
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		proc := newMockProcessor()
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a level-up is queued", func() {
			convey.So(q.Enqueue(ctx, model.LevelUpEvent{EventID: "e1", ItemID: "sword"}), convey.ShouldBeNil)

			convey.Convey("Then it reaches the processor", func() {
				convey.So(waitFor(func() bool { return proc.processed("e1") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When processing fails", func() {
			proc.errors["broken"] = errors.New("boom")
			convey.So(q.Enqueue(ctx, model.LevelUpEvent{EventID: "bad", ItemID: "broken"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.LevelUpEvent{EventID: "good", ItemID: "sword"}), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return proc.processed("good") }), convey.ShouldBeTrue)
				convey.So(proc.processed("bad"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, newMockProcessor())
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.So(waitFor(func() bool {
			select {
			case <-w.Done():
				return true
			default:
				return false
			}
		}), convey.ShouldBeTrue)
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		proc := newMockProcessor()

		convey.Convey("A non-positive count falls back to the CPU count", func() {
			pool := worker.NewPool(0, q, proc)
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When many events are queued", func() {
			pool := worker.NewPool(4, q, proc)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			for i := range 100 {
				convey.So(q.Enqueue(ctx, model.LevelUpEvent{EventID: fmt.Sprint(i), ItemID: "item"}), convey.ShouldBeNil)
			}

			convey.Convey("Then shutdown drains every one of them", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()

				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(proc.count(), convey.ShouldEqual, 100)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a worker is stuck past the deadline", func() {
			proc.delay = 200 * time.Millisecond
			pool := worker.NewPool(1, q, proc)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			convey.So(q.Enqueue(ctx, model.LevelUpEvent{EventID: "slow", ItemID: "item"}), convey.ShouldBeNil)
			convey.So(waitFor(func() bool { return pool.Busy() == 1 }), convey.ShouldBeTrue)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer shutdownCancel()

			convey.So(errors.Is(pool.Shutdown(shutdownCtx), context.DeadlineExceeded), convey.ShouldBeTrue)
		})
	})
}
