package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/teamfit/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDigest(t *testing.T) {
	Convey("Given ingestion text", t, func() {
		a := dedupe.Digest("Employee: Ann. Skills: Go.")

		So(dedupe.Digest("Employee: Ann. Skills: Go."), ShouldEqual, a)
		So(dedupe.Digest("Employee: Ann. Skills: Rust."), ShouldNotEqual, a)
	})
}

func TestInMemoryTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new tracker", t, func() {
		d := dedupe.NewInMemoryTracker()

		Convey("Then nothing is unchanged yet", func() {
			So(d.Size(), ShouldEqual, 0)
			So(d.Unchanged(ctx, "employee/e1", 1), ShouldBeFalse)
		})

		Convey("When a digest is recorded", func() {
			d.Record(ctx, "employee/e1", 42)

			Convey("Then the same digest is unchanged and another is not", func() {
				So(d.Unchanged(ctx, "employee/e1", 42), ShouldBeTrue)
				So(d.Unchanged(ctx, "employee/e1", 43), ShouldBeFalse)
				So(d.Unchanged(ctx, "project/e1", 42), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And re-recorded with new text", func() {
				d.Record(ctx, "employee/e1", 43)

				Convey("Then the digest is replaced in place", func() {
					So(d.Unchanged(ctx, "employee/e1", 43), ShouldBeTrue)
					So(d.Unchanged(ctx, "employee/e1", 42), ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And forgotten", func() {
				d.Forget(ctx, "employee/e1")
				d.Forget(ctx, "missing")

				Convey("Then the next ingestion runs again", func() {
					So(d.Unchanged(ctx, "employee/e1", 42), ShouldBeFalse)
					So(d.Size(), ShouldEqual, 0)
				})
			})
		})
	})

	Convey("Given a bounded tracker at capacity", t, func() {
		d := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.Record(ctx, fmt.Sprintf("k%d", i), uint64(i))
		}

		Convey("When one more key is recorded", func() {
			d.Record(ctx, "k4", 4)

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.Unchanged(ctx, "k1", 1), ShouldBeFalse)
				So(d.Unchanged(ctx, "k2", 2), ShouldBeTrue)
				So(d.Unchanged(ctx, "k4", 4), ShouldBeTrue)
			})
		})

		Convey("When a middle key is forgotten and two more arrive", func() {
			d.Forget(ctx, "k2")
			d.Record(ctx, "k4", 4)
			d.Record(ctx, "k5", 5)

			Convey("Then eviction still removes the oldest remaining key", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.Unchanged(ctx, "k1", 1), ShouldBeFalse)
				So(d.Unchanged(ctx, "k3", 3), ShouldBeTrue)
				So(d.Unchanged(ctx, "k5", 5), ShouldBeTrue)
			})
		})
	})

	Convey("Given a tracker of size one", t, func() {
		d := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(1))
		d.Record(ctx, "a", 1)
		d.Record(ctx, "b", 2)

		So(d.Size(), ShouldEqual, 1)
		So(d.Unchanged(ctx, "a", 1), ShouldBeFalse)
		So(d.Unchanged(ctx, "b", 2), ShouldBeTrue)
	})

	Convey("Given an unbounded tracker", t, func() {
		d := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(0))
		const n = 1000
		for i := 0; i < n; i++ {
			d.Record(ctx, fmt.Sprintf("k%d", i), uint64(i))
		}

		So(d.Size(), ShouldEqual, int64(n))
		So(d.Unchanged(ctx, "k0", 0), ShouldBeTrue)
		d.Forget(ctx, "k0")
		So(d.Size(), ShouldEqual, int64(n-1))
	})
}

func TestTrackerConcurrency(t *testing.T) {
	Convey("Given a tracker shared by workers", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(1000))
		const workers = 10
		const perWorker = 100

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					key := fmt.Sprintf("k-%d-%d", w, j)
					d.Record(ctx, key, uint64(j))
					_ = d.Unchanged(ctx, key, uint64(j))
				}
			}(w)
		}
		wg.Wait()

		So(d.Size(), ShouldEqual, int64(workers*perWorker))

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					d.Forget(ctx, fmt.Sprintf("k-%d-%d", w, j))
				}
			}(w)
		}
		wg.Wait()

		So(d.Size(), ShouldEqual, 0)
	})
}
