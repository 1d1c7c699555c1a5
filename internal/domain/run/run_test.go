package run

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhusam/heartgrid/internal/domain/evaluate"
	"github.com/mhusam/heartgrid/internal/domain/grid"
)

func TestDefaults(t *testing.T) {
	req := Defaults()

	assert.Equal(t, 80, req.SplitPercent)
	assert.Equal(t, IntRange{Min: 10, Max: 50, Step: 10}, req.NEstimators)
	assert.Equal(t, IntRange{Min: 5, Max: 8, Step: 2}, req.MaxDepth)
	assert.Equal(t, []string{grid.MaxFeaturesAuto}, req.MaxFeatures)
	assert.Equal(t, grid.CriterionGini, req.Criterion)
	assert.Equal(t, 5, req.CVFolds)
	assert.Equal(t, 42, req.Seed)
	assert.True(t, req.Bootstrap)
	assert.Equal(t, 1, req.ParallelJobs)

	assert.NoError(t, req.Validate())
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Request)) Request {
		req := Defaults()
		f(&req)
		return req
	}

	cases := []struct {
		name string
		req  Request
	}{
		{"split too low", mutate(func(r *Request) { r.SplitPercent = 49 })},
		{"split too high", mutate(func(r *Request) { r.SplitPercent = 91 })},
		{"folds too low", mutate(func(r *Request) { r.CVFolds = 1 })},
		{"folds too high", mutate(func(r *Request) { r.CVFolds = 11 })},
		{"seed negative", mutate(func(r *Request) { r.Seed = -1 })},
		{"seed too high", mutate(func(r *Request) { r.Seed = 1001 })},
		{"unknown criterion", mutate(func(r *Request) { r.Criterion = "mse" })},
		{"bad parallel jobs", mutate(func(r *Request) { r.ParallelJobs = 4 })},
		{"empty max_features", mutate(func(r *Request) { r.MaxFeatures = nil })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.req.Validate(), ErrInvalidRequest)
		})
	}

	t.Run("boundary values pass", func(t *testing.T) {
		req := Defaults()
		req.SplitPercent = 50
		req.CVFolds = 2
		req.Seed = 0
		assert.NoError(t, req.Validate())

		req.SplitPercent = 90
		req.CVFolds = 10
		req.Seed = 1000
		req.ParallelJobs = -1
		assert.NoError(t, req.Validate())
	})
}

func TestGrid(t *testing.T) {
	g, err := Defaults().Grid()
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 30, 40, 50}, g.NEstimators)
	assert.Equal(t, []int{5, 7}, g.MaxDepth)
	assert.Equal(t, 10, g.Size())
}

func TestSummarize(t *testing.T) {
	best := grid.Combo{NEstimators: 30, MaxDepth: 7, MaxFeatures: "auto"}
	got := Summarize(best, 0.8517)
	assert.Equal(t, "The best parameters are {n_estimators: 30, max_depth: 7, max_features: auto} with a score of 0.85", got)
}

func TestRequestJSONRoundTrip(t *testing.T) {
	req := Defaults()
	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"split_percent":80`)
	assert.Contains(t, string(data), `"cv_folds":5`)

	var back Request
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, req, back)
}

func TestSummarized(t *testing.T) {
	now := time.Now().UTC()
	rep := &Report{
		ID:          "abc",
		CreatedAt:   now,
		BestCVScore: 0.9,
		BestParams:  grid.Combo{NEstimators: 10, MaxDepth: 5, MaxFeatures: "auto"},
		Evaluation:  &evaluate.Report{Accuracy: 0.88},
	}

	s := rep.Summarized()
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, 0.9, s.BestCVScore)
	assert.Equal(t, 0.88, s.TestAccuracy)
	assert.Equal(t, "{n_estimators: 10, max_depth: 5, max_features: auto}", s.BestParams)

	t.Run("missing evaluation leaves accuracy zero", func(t *testing.T) {
		s := (&Report{ID: "x"}).Summarized()
		assert.Zero(t, s.TestAccuracy)
	})
}
