package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mhusam/heartgrid/internal/adapters/repository"
	"github.com/mhusam/heartgrid/internal/domain/evaluate"
	"github.com/mhusam/heartgrid/internal/domain/run"
	"github.com/mhusam/heartgrid/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// reportsStoredGauge reads the published history size from the metrics
// registry.
func reportsStoredGauge() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, family := range families {
		if strings.HasSuffix(family.GetName(), "reports_stored") {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func newReport(id string, score float64) *run.Report {
	return &run.Report{
		ID:          id,
		BestCVScore: score,
		Evaluation:  &evaluate.Report{Accuracy: score},
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When storing a report", func() {
			err := store.Put(ctx, newReport("a", 0.9))

			Convey("Then it can be fetched back", func() {
				So(err, ShouldBeNil)
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "a")
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When fetching an unknown id", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then it reports not found", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When storing a report without an id", func() {
			err := store.Put(ctx, &run.Report{})

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, repository.ErrBadReport)
			})
		})

		Convey("When storing a nil report", func() {
			err := store.Put(ctx, nil)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, repository.ErrBadReport)
			})
		})

		Convey("When storing the same id twice", func() {
			So(store.Put(ctx, newReport("dup", 0.8)), ShouldBeNil)
			err := store.Put(ctx, newReport("dup", 0.9))

			Convey("Then the duplicate is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, repository.ErrDuplicateID)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When listing reports", func() {
			So(store.Put(ctx, newReport("first", 0.7)), ShouldBeNil)
			So(store.Put(ctx, newReport("second", 0.8)), ShouldBeNil)
			So(store.Put(ctx, newReport("third", 0.9)), ShouldBeNil)

			summaries := store.List(ctx)

			Convey("Then they come back newest first", func() {
				So(summaries, ShouldHaveLength, 3)
				So(summaries[0].ID, ShouldEqual, "third")
				So(summaries[1].ID, ShouldEqual, "second")
				So(summaries[2].ID, ShouldEqual, "first")
			})
		})
	})

	Convey("Given a store with a small capacity", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCapacity(3))

		Convey("When storing more reports than the capacity", func() {
			for i := 0; i < 5; i++ {
				So(store.Put(ctx, newReport(fmt.Sprintf("r%d", i), 0.5)), ShouldBeNil)
			}

			Convey("Then the oldest reports are evicted", func() {
				So(store.Count(ctx), ShouldEqual, 3)
				So(reportsStoredGauge(), ShouldEqual, 3)

				_, err := store.Get(ctx, "r0")
				So(err, ShouldWrap, repository.ErrNotFound)
				_, err = store.Get(ctx, "r1")
				So(err, ShouldWrap, repository.ErrNotFound)

				got, err := store.Get(ctx, "r4")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "r4")
			})
		})
	})
}
