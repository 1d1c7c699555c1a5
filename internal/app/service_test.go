package app_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mhusam/heartgrid/internal/app"
	"github.com/mhusam/heartgrid/internal/domain/run"
	"github.com/mhusam/heartgrid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// writeSampleCSV builds a small separable dataset on disk: class 1 rows
// sit far from class 0 rows on both numeric features.
func writeSampleCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.csv")
	content := "age,chol,sex,target\n"
	for i := 0; i < 40; i++ {
		label := i % 2
		content += fmt.Sprintf("%d,%d,%d,%d\n", 30+label*30+i%5, 180+label*120+i%7, i%2, label)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func smallRequest() run.Request {
	req := run.Defaults()
	req.NEstimators = run.IntRange{Min: 5, Max: 10, Step: 5}
	req.MaxDepth = run.IntRange{Min: 3, Max: 3, Step: 1}
	req.CVFolds = 3
	return req
}

func startedService(t *testing.T, opts ...app.Option) *app.Service {
	t.Helper()

	opts = append([]app.Option{
		app.WithDataPath(writeSampleCSV(t)),
		app.WithCategoricalColumns([]string{"sex"}),
	}, opts...)
	svc := app.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service configuration", t, func() {
		ctx := context.Background()

		Convey("When starting with a missing dataset", func() {
			svc := app.New(app.WithDataPath("/nonexistent/dataset.csv"))
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When using the service before Start", func() {
			svc := app.New()

			_, runErr := svc.Run(ctx, run.Defaults())
			_, getErr := svc.GetRun(ctx, "x")
			_, listErr := svc.ListRuns(ctx)
			_, dsErr := svc.Dataset(ctx)

			Convey("Then every operation reports not started", func() {
				So(runErr, ShouldWrap, app.ErrNotStarted)
				So(getErr, ShouldWrap, app.ErrNotStarted)
				So(listErr, ShouldWrap, app.ErrNotStarted)
				So(dsErr, ShouldWrap, app.ErrNotStarted)
			})
		})

		Convey("When starting with a valid dataset", func() {
			svc := startedService(t)

			Convey("Then the dataset preview is available", func() {
				info, err := svc.Dataset(ctx)
				So(err, ShouldBeNil)
				So(info.Rows, ShouldEqual, 40)
				So(info.TargetColumn, ShouldEqual, "target")
				So(info.Classes, ShouldResemble, []int{0, 1})
				So(info.Columns, ShouldResemble, []string{"age", "chol", "sex", "target"})
				So(info.FeatureNames, ShouldResemble, []string{"age", "chol", "sex_0", "sex_1"})
				So(info.Head, ShouldHaveLength, 5)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestServiceRun(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When executing a run", func() {
			report, err := svc.Run(ctx, smallRequest())

			Convey("Then the report is complete", func() {
				So(err, ShouldBeNil)
				So(report, ShouldNotBeNil)
				So(report.ID, ShouldNotBeEmpty)
				So(report.TrainRows, ShouldEqual, 32)
				So(report.TestRows, ShouldEqual, 8)
				So(report.Scores, ShouldHaveLength, 2)
				So(report.BestCVScore, ShouldBeBetweenOrEqual, 0, 1)
				So(report.Summary, ShouldContainSubstring, "The best parameters are")
				So(report.Evaluation, ShouldNotBeNil)
				So(report.Surface.X, ShouldResemble, []int{5, 10})
				So(report.Surface.Y, ShouldResemble, []int{3})
			})

			Convey("And the report is stored", func() {
				So(err, ShouldBeNil)
				got, err := svc.GetRun(ctx, report.ID)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, report.ID)

				summaries, err := svc.ListRuns(ctx)
				So(err, ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].ID, ShouldEqual, report.ID)
			})
		})

		Convey("When running the same seeded request twice", func() {
			first, err1 := svc.Run(ctx, smallRequest())
			second, err2 := svc.Run(ctx, smallRequest())

			Convey("Then the model selection is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.BestParams, ShouldResemble, first.BestParams)
				So(second.BestCVScore, ShouldEqual, first.BestCVScore)
				So(second.Scores, ShouldResemble, first.Scores)
				So(second.Evaluation.Accuracy, ShouldEqual, first.Evaluation.Accuracy)
				So(second.ID, ShouldNotEqual, first.ID)
			})
		})

		Convey("When the request is invalid", func() {
			req := smallRequest()
			req.SplitPercent = 10
			_, err := svc.Run(ctx, req)

			Convey("Then it is rejected before any computation", func() {
				So(err, ShouldWrap, run.ErrInvalidRequest)
			})
		})

		Convey("When the grid is empty in one dimension", func() {
			req := smallRequest()
			req.NEstimators = run.IntRange{Min: 10, Max: 5, Step: 1}
			_, err := svc.Run(ctx, req)

			Convey("Then the grid error is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "n_estimators")
			})
		})

		Convey("When the stats are requested", func() {
			stats := svc.GetStats()

			Convey("Then they describe the running service", func() {
				So(stats.Started, ShouldBeTrue)
				So(stats.DatasetRows, ShouldEqual, 40)
				So(stats.MaxGridPoints, ShouldEqual, 256)
			})
		})
	})

	Convey("Given a service with a tight grid cap", t, func() {
		ctx := context.Background()
		svc := startedService(t, app.WithMaxGridPoints(1))

		Convey("When a run would exceed the cap", func() {
			_, err := svc.Run(ctx, smallRequest())

			Convey("Then the run is rejected", func() {
				So(err, ShouldWrap, run.ErrInvalidRequest)
				So(err.Error(), ShouldContainSubstring, "grid points exceed")
			})
		})
	})

	Convey("Given a service with a history of one", t, func() {
		ctx := context.Background()
		svc := startedService(t, app.WithHistorySize(1))

		Convey("When two runs complete", func() {
			first, err1 := svc.Run(ctx, smallRequest())
			second, err2 := svc.Run(ctx, smallRequest())

			Convey("Then only the newest survives", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)

				summaries, err := svc.ListRuns(ctx)
				So(err, ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].ID, ShouldEqual, second.ID)

				_, err = svc.GetRun(ctx, first.ID)
				So(err, ShouldNotBeNil)
			})
		})
	})
}
