package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/fsrfilter/internal/adapters/repository"
	model "github.com/okian/fsrfilter/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func kept(id string) model.Verdict {
	return model.Verdict{EventID: id, Keep: true, Policy: "radiated"}
}

func vetoed(id string, pt float64, origin string) model.Verdict {
	return model.Verdict{
		EventID: id, Keep: false, Policy: "radiated",
		VetoIndex: 3, VetoPt: pt, VetoDeltaR: 0.6, VetoOrigin: origin,
	}
}

func TestShardedStore_BasicOperations(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx, repository.WithShardCount(4))
		defer store.Close()

		Convey("When a verdict is recorded", func() {
			err := store.Record(ctx, kept("1:1:1"))

			Convey("Then it should be retrievable by event id", func() {
				So(err, ShouldBeNil)
				v, err := store.Get(ctx, "1:1:1")
				So(err, ShouldBeNil)
				So(v.Keep, ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When an unknown event is requested", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a verdict without an event id is recorded", func() {
			err := store.Record(ctx, model.Verdict{Keep: true})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, repository.ErrInvalidEventID), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When vetoes are requested with a non-positive limit", func() {
			_, err := store.Vetoes(ctx, 0)

			Convey("Then ErrInvalidLimit should be returned", func() {
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})
	})
}

func TestShardedStore_VetoOrdering(t *testing.T) {
	Convey("Given a mix of kept and vetoed events", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx)
		defer store.Close()

		So(store.Record(ctx, vetoed("evt-c", 15, "fsr")), ShouldBeNil)
		So(store.Record(ctx, kept("evt-k")), ShouldBeNil)
		So(store.Record(ctx, vetoed("evt-a", 42, "isr")), ShouldBeNil)
		So(store.Record(ctx, vetoed("evt-b", 15, "fsr")), ShouldBeNil)

		Convey("When listing vetoes", func() {
			list, err := store.Vetoes(ctx, 10)

			Convey("Then they should be ordered by photon pt desc then id asc", func() {
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 3)
				So(list[0].EventID, ShouldEqual, "evt-a")
				So(list[1].EventID, ShouldEqual, "evt-b")
				So(list[2].EventID, ShouldEqual, "evt-c")
			})
		})

		Convey("When the limit is smaller than the number of vetoes", func() {
			list, err := store.Vetoes(ctx, 2)

			Convey("Then only the hardest photons should be returned", func() {
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].EventID, ShouldEqual, "evt-a")
				So(list[1].EventID, ShouldEqual, "evt-b")
			})
		})

		Convey("When summarizing", func() {
			sum := store.Summary(ctx)

			Convey("Then the counts should split by decision and origin", func() {
				So(sum, ShouldResemble, repository.Summary{
					Total: 4, Kept: 1, Vetoed: 3, VetoedFSR: 2, VetoedISR: 1,
				})
			})
		})

		Convey("When a vetoed event is overwritten with a keep", func() {
			So(store.Record(ctx, kept("evt-a")), ShouldBeNil)

			Convey("Then it should leave the veto list and the summary", func() {
				list, err := store.Vetoes(ctx, 10)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].EventID, ShouldEqual, "evt-b")
				So(store.Summary(ctx), ShouldResemble, repository.Summary{
					Total: 4, Kept: 2, Vetoed: 2, VetoedFSR: 2, VetoedISR: 0,
				})
			})
		})

		Convey("When a vetoed event is overwritten with a harder photon", func() {
			So(store.Record(ctx, vetoed("evt-c", 99, "fsr")), ShouldBeNil)

			Convey("Then it should move to the front without duplication", func() {
				list, err := store.Vetoes(ctx, 10)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 3)
				So(list[0].EventID, ShouldEqual, "evt-c")
				So(list[0].VetoPt, ShouldEqual, 99)
				So(store.Count(ctx), ShouldEqual, 4)
			})
		})
	})
}

func TestShardedStore_ConcurrentAccess(t *testing.T) {
	Convey("Given many writers over overlapping event ids", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx, repository.WithShardCount(8))
		defer store.Close()

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					id := fmt.Sprintf("1:1:%d", i)
					if (i+w)%2 == 0 {
						_ = store.Record(ctx, vetoed(id, float64(10+i), "fsr"))
					} else {
						_ = store.Record(ctx, kept(id))
					}
					_, _ = store.Vetoes(ctx, 5)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then the summary should agree with the stored verdicts", func() {
			sum := store.Summary(ctx)
			So(sum.Total, ShouldEqual, 200)
			So(sum.Kept+sum.Vetoed, ShouldEqual, 200)

			list, err := store.Vetoes(ctx, 1000)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, sum.Vetoed)
			for _, v := range list {
				got, err := store.Get(ctx, v.EventID)
				So(err, ShouldBeNil)
				So(got.Keep, ShouldBeFalse)
			}
		})
	})
}

func TestShardedStore_Close(t *testing.T) {
	Convey("Given a store with a fast metrics updater", t, func() {
		store := repository.NewShardedStore(context.Background(),
			repository.WithMetricsUpdateInterval(time.Millisecond))
		_ = store.Record(context.Background(), kept("evt"))
		time.Sleep(5 * time.Millisecond)

		Convey("Then Close should be idempotent", func() {
			So(store.Close(), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})
	})
}
