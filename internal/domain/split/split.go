// Package split provides seeded train/test partitioning and k-fold
// index generation. All randomness derives from the caller's seed so a
// given seed always produces the same partitions.
package split

import (
	"fmt"
	"math/rand"
)

// TrainTest holds row indices for the two partitions.
type TrainTest struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with the seed and assigns the
// first n*trainPercent/100 of the permutation to the training
// partition. Integer math keeps the sizes stable: 80% of 300 rows is
// always 240/60.
func TrainTestSplit(n, trainPercent int, seed int64) (TrainTest, error) {
	if n < 2 {
		return TrainTest{}, fmt.Errorf("%w: need at least 2 rows, got %d", ErrTooFewRows, n)
	}
	if trainPercent < 1 || trainPercent > 99 {
		return TrainTest{}, fmt.Errorf("%w: train percent %d outside 1..99", ErrBadRatio, trainPercent)
	}

	nTrain := n * trainPercent / 100
	if nTrain == 0 || nTrain == n {
		return TrainTest{}, fmt.Errorf("%w: split %d%% leaves an empty partition for %d rows", ErrBadRatio, trainPercent, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	tt := TrainTest{
		Train: make([]int, nTrain),
		Test:  make([]int, n-nTrain),
	}
	copy(tt.Train, perm[:nTrain])
	copy(tt.Test, perm[nTrain:])
	return tt, nil
}

// KFold deals a seeded permutation of the given indices round-robin
// into k folds. Every index lands in exactly one fold; fold sizes
// differ by at most one.
func KFold(indices []int, k int, seed int64) ([][]int, error) {
	n := len(indices)
	if k < 2 {
		return nil, fmt.Errorf("%w: fold count %d below 2", ErrBadFoldCount, k)
	}
	if k > n {
		return nil, fmt.Errorf("%w: %d folds exceed %d training samples", ErrBadFoldCount, k, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, p := range perm {
		folds[i%k] = append(folds[i%k], indices[p])
	}
	return folds, nil
}

// Complement returns all indices from folds except the one at hold.
// It is the training side of a cross-validation rotation.
func Complement(folds [][]int, hold int) []int {
	out := make([]int, 0)
	for i, f := range folds {
		if i == hold {
			continue
		}
		out = append(out, f...)
	}
	return out
}

// Gather copies the rows of X at the given indices.
func Gather(x [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = x[idx]
	}
	return out
}

// GatherLabels copies the labels at the given indices.
func GatherLabels(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}
