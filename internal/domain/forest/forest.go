// Package forest implements a Random Forest classifier over dense
// float64 feature matrices. Fitting is deterministic for a fixed seed:
// tree i derives its own RNG from seed+i, so the result is identical no
// matter how many goroutines fit trees concurrently.
package forest

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
)

// Classifier is a bagged ensemble of CART trees.
type Classifier struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     string // auto, sqrt or log2
	criterion       string // gini or entropy
	bootstrap       bool
	seed            int64
	jobs            int // bounded tree-fitting workers; <=0 means all cores

	classes []int // sorted distinct labels; tree output indexes into this
	trees   []*decisionTree
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.nEstimators = n
		}
	}
}

// WithMaxDepth caps tree depth; 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(c *Classifier) {
		if d >= 0 {
			c.maxDepth = d
		}
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(c *Classifier) {
		if n >= 2 {
			c.minSamplesSplit = n
		}
	}
}

// WithMaxFeatures selects the per-split feature subsampling strategy.
func WithMaxFeatures(mode string) Option {
	return func(c *Classifier) {
		if mode != "" {
			c.maxFeatures = mode
		}
	}
}

// WithCriterion selects the impurity measure.
func WithCriterion(criterion string) Option {
	return func(c *Classifier) {
		if criterion != "" {
			c.criterion = criterion
		}
	}
}

// WithBootstrap toggles bootstrap resampling per tree.
func WithBootstrap(b bool) Option {
	return func(c *Classifier) { c.bootstrap = b }
}

// WithSeed fixes the ensemble RNG seed.
func WithSeed(seed int64) Option {
	return func(c *Classifier) { c.seed = seed }
}

// WithJobs bounds the number of concurrent tree-fitting workers.
// Values <= 0 use all cores.
func WithJobs(jobs int) Option {
	return func(c *Classifier) { c.jobs = jobs }
}

// New constructs a Classifier with defaults matching the dashboard's.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		nEstimators:     100,
		maxDepth:        0,
		minSamplesSplit: 2,
		maxFeatures:     "auto",
		criterion:       "gini",
		bootstrap:       true,
		seed:            42,
		jobs:            1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit trains the ensemble on x (n rows) and labels y.
func (c *Classifier) Fit(x [][]float64, y []int) error {
	n := len(x)
	if n == 0 {
		return ErrEmptyTrainingSet
	}
	if len(y) != n {
		return fmt.Errorf("%w: %d rows vs %d labels", ErrShapeMismatch, n, len(y))
	}
	p := len(x[0])
	for i := range x {
		if len(x[i]) != p {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(x[i]), p)
		}
	}
	switch c.criterion {
	case "gini", "entropy":
	default:
		return fmt.Errorf("%w: criterion %q", ErrBadHyperparameter, c.criterion)
	}

	c.classes = distinctSorted(y)
	if len(c.classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", ErrBadHyperparameter, len(c.classes))
	}
	classIdx := make(map[int]int, len(c.classes))
	for i, lab := range c.classes {
		classIdx[lab] = i
	}
	yIdx := make([]int, n)
	for i, lab := range y {
		yIdx[i] = classIdx[lab]
	}

	maxFeat, err := resolveMaxFeatures(c.maxFeatures, p)
	if err != nil {
		return err
	}

	c.trees = make([]*decisionTree, c.nEstimators)

	workers := c.jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > c.nEstimators {
		workers = c.nEstimators
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c.trees[i] = c.fitTree(x, yIdx, n, maxFeat, i)
			}
		}()
	}
	for i := 0; i < c.nEstimators; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return nil
}

// fitTree builds tree i with its own seed-derived RNG.
func (c *Classifier) fitTree(x [][]float64, yIdx []int, n, maxFeat, i int) *decisionTree {
	rng := rand.New(rand.NewSource(c.seed + int64(i)))

	sample := make([]int, n)
	for j := 0; j < n; j++ {
		if c.bootstrap {
			sample[j] = rng.Intn(n)
		} else {
			sample[j] = j
		}
	}

	tree := &decisionTree{
		maxDepth:        c.maxDepth,
		minSamplesSplit: c.minSamplesSplit,
		maxFeatures:     maxFeat,
		criterion:       c.criterion,
		nClasses:        len(c.classes),
		rng:             rng,
	}
	tree.fit(x, yIdx, sample)
	return tree
}

// Predict returns the majority-vote label for every row of x.
// Vote ties resolve to the lowest class label.
func (c *Classifier) Predict(x [][]float64) ([]int, error) {
	if len(c.trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]int, len(x))
	votes := make([]int, len(c.classes))
	for i, row := range x {
		for j := range votes {
			votes[j] = 0
		}
		for _, tree := range c.trees {
			votes[tree.predict(row)]++
		}
		out[i] = c.classes[argmaxCounts(votes)]
	}
	return out, nil
}

// Classes returns the sorted distinct labels seen during Fit.
func (c *Classifier) Classes() []int {
	out := make([]int, len(c.classes))
	copy(out, c.classes)
	return out
}

// NumTrees reports the fitted ensemble size.
func (c *Classifier) NumTrees() int { return len(c.trees) }

// resolveMaxFeatures maps a strategy name to a feature count in [1, p].
// "auto" follows the classifier convention of sqrt.
func resolveMaxFeatures(mode string, p int) (int, error) {
	var k int
	switch mode {
	case "auto", "sqrt":
		k = int(math.Ceil(math.Sqrt(float64(p))))
	case "log2":
		k = int(math.Ceil(math.Log2(float64(p))))
	default:
		return 0, fmt.Errorf("%w: max_features %q", ErrBadHyperparameter, mode)
	}
	if k < 1 {
		k = 1
	}
	if k > p {
		k = p
	}
	return k, nil
}

func distinctSorted(y []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, 2)
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
