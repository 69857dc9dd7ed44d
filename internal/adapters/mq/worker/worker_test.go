package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/fsrfilter/internal/adapters/mq/queue"
	worker "github.com/okian/fsrfilter/internal/adapters/mq/worker"
	model "github.com/okian/fsrfilter/internal/domain/model"
	logging "github.com/okian/fsrfilter/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

// fakeDecider vetoes events whose id is in the veto set.
type fakeDecider struct {
	veto  map[string]bool
	calls sync.Map
}

func (d *fakeDecider) Decide(_ context.Context, e model.Event) model.Verdict { //nolint:gocritic // test double
	n, _ := d.calls.LoadOrStore(e.ID, new(int))
	*(n.(*int))++
	return model.Verdict{EventID: e.ID, Keep: !d.veto[e.ID]}
}

func (d *fakeDecider) callsFor(id string) int {
	n, ok := d.calls.Load(id)
	if !ok {
		return 0
	}
	return *(n.(*int))
}

type fakeRecorder struct {
	mu       sync.Mutex
	verdicts map[string]model.Verdict
	fail     map[string]bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{verdicts: map[string]model.Verdict{}, fail: map[string]bool{}}
}

func (r *fakeRecorder) Record(_ context.Context, v model.Verdict) error { //nolint:gocritic // test double
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[v.EventID] {
		return errors.New("store unavailable")
	}
	r.verdicts[v.EventID] = v
	return nil
}

func (r *fakeRecorder) get(id string) (model.Verdict, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.verdicts[id]
	return v, ok
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.verdicts)
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		decider := &fakeDecider{veto: map[string]bool{"evt-2": true}}
		recorder := newFakeRecorder()
		pool := worker.NewPool(3, q, decider, recorder)

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When events are queued and the pool is shut down", func() {
			for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
				convey.So(q.Enqueue(ctx, model.Event{ID: id}), convey.ShouldBeNil)
			}
			pool.Start(ctx)
			err := pool.Shutdown(ctx)

			convey.Convey("Then every event should be decided once and recorded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recorder.count(), convey.ShouldEqual, 3)
				for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
					convey.So(decider.callsFor(id), convey.ShouldEqual, 1)
				}
				v, ok := recorder.get("evt-2")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v.Keep, convey.ShouldBeFalse)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the recorder fails for one event", func() {
			recorder.fail["evt-bad"] = true
			convey.So(q.Enqueue(ctx, model.Event{ID: "evt-bad"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.Event{ID: "evt-good"}), convey.ShouldBeNil)
			pool.Start(ctx)
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then the remaining events should still be recorded", func() {
				_, bad := recorder.get("evt-bad")
				_, good := recorder.get("evt-good")
				convey.So(bad, convey.ShouldBeFalse)
				convey.So(good, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			pool.Start(runCtx)
			cancel()

			convey.Convey("Then shutdown should return promptly", func() {
				done := make(chan error, 1)
				go func() { done <- pool.Shutdown(ctx) }()
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(2 * time.Second):
					convey.So("shutdown hung", convey.ShouldBeEmpty)
				}
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		pool := worker.NewPool(0, q, &fakeDecider{}, newFakeRecorder())

		convey.Convey("Then a CPU-derived number of workers should be created", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
