package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	t.Run("uses integer partition sizes", func(t *testing.T) {
		tt, err := TrainTestSplit(300, 80, 42)
		require.NoError(t, err)
		assert.Len(t, tt.Train, 240)
		assert.Len(t, tt.Test, 60)
	})

	t.Run("partitions are disjoint and cover all rows", func(t *testing.T) {
		tt, err := TrainTestSplit(103, 70, 7)
		require.NoError(t, err)

		seen := make(map[int]bool, 103)
		for _, idx := range append(append([]int{}, tt.Train...), tt.Test...) {
			assert.False(t, seen[idx], "index %d assigned twice", idx)
			seen[idx] = true
		}
		assert.Len(t, seen, 103)
	})

	t.Run("same seed gives the same split", func(t *testing.T) {
		a, err := TrainTestSplit(100, 80, 42)
		require.NoError(t, err)
		b, err := TrainTestSplit(100, 80, 42)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("different seeds give different splits", func(t *testing.T) {
		a, err := TrainTestSplit(100, 80, 1)
		require.NoError(t, err)
		b, err := TrainTestSplit(100, 80, 2)
		require.NoError(t, err)
		assert.NotEqual(t, a.Train, b.Train)
	})

	t.Run("too few rows is rejected", func(t *testing.T) {
		_, err := TrainTestSplit(1, 80, 42)
		assert.ErrorIs(t, err, ErrTooFewRows)
	})

	t.Run("degenerate ratio leaving an empty partition is rejected", func(t *testing.T) {
		_, err := TrainTestSplit(3, 10, 42)
		assert.ErrorIs(t, err, ErrBadRatio)
	})

	t.Run("out of range percent is rejected", func(t *testing.T) {
		_, err := TrainTestSplit(100, 0, 42)
		assert.ErrorIs(t, err, ErrBadRatio)
		_, err = TrainTestSplit(100, 100, 42)
		assert.ErrorIs(t, err, ErrBadRatio)
	})
}

func TestKFold(t *testing.T) {
	indices := make([]int, 23)
	for i := range indices {
		indices[i] = i * 3 // arbitrary non-contiguous indices
	}

	t.Run("every index lands in exactly one fold", func(t *testing.T) {
		folds, err := KFold(indices, 5, 42)
		require.NoError(t, err)
		require.Len(t, folds, 5)

		seen := make(map[int]int)
		for _, fold := range folds {
			for _, idx := range fold {
				seen[idx]++
			}
		}
		assert.Len(t, seen, len(indices))
		for idx, count := range seen {
			assert.Equal(t, 1, count, "index %d appears %d times", idx, count)
		}
	})

	t.Run("fold sizes differ by at most one", func(t *testing.T) {
		folds, err := KFold(indices, 5, 42)
		require.NoError(t, err)

		minSize, maxSize := len(folds[0]), len(folds[0])
		for _, fold := range folds {
			if len(fold) < minSize {
				minSize = len(fold)
			}
			if len(fold) > maxSize {
				maxSize = len(fold)
			}
		}
		assert.LessOrEqual(t, maxSize-minSize, 1)
	})

	t.Run("same seed deals the same folds", func(t *testing.T) {
		a, err := KFold(indices, 4, 99)
		require.NoError(t, err)
		b, err := KFold(indices, 4, 99)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("fewer than two folds is rejected", func(t *testing.T) {
		_, err := KFold(indices, 1, 42)
		assert.ErrorIs(t, err, ErrBadFoldCount)
	})

	t.Run("more folds than samples is rejected", func(t *testing.T) {
		_, err := KFold([]int{1, 2, 3}, 4, 42)
		assert.ErrorIs(t, err, ErrBadFoldCount)
	})
}

func TestComplement(t *testing.T) {
	folds := [][]int{{0, 1}, {2, 3}, {4}}

	assert.Equal(t, []int{2, 3, 4}, Complement(folds, 0))
	assert.Equal(t, []int{0, 1, 4}, Complement(folds, 1))
	assert.Equal(t, []int{0, 1, 2, 3}, Complement(folds, 2))
}

func TestGather(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{10, 11, 12, 13}

	assert.Equal(t, [][]float64{{3}, {1}}, Gather(x, []int{3, 1}))
	assert.Equal(t, []int{13, 11}, GatherLabels(y, []int{3, 1}))
}
