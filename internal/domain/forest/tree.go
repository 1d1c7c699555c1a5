package forest

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a fitted CART tree. Splits are numeric
// thresholds: x[feature] <= threshold goes left.
type treeNode struct {
	isLeaf    bool
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	// leaf data
	counts []int // class-index counts of the training rows that reached here
	pred   int   // majority class index
}

// decisionTree is a CART classifier over class indices 0..nClasses-1.
type decisionTree struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	maxFeatures     int // number of features sampled per split, 0 means all
	criterion       string
	nClasses        int
	rng             *rand.Rand

	root *treeNode
}

// fit builds the tree from the rows of x selected by sample.
func (t *decisionTree) fit(x [][]float64, y []int, sample []int) {
	p := len(x[0])
	t.root = t.buildNode(x, y, sample, 0, p)
}

func (t *decisionTree) buildNode(x [][]float64, y []int, idx []int, depth, p int) *treeNode {
	counts := make([]int, t.nClasses)
	for _, i := range idx {
		counts[y[i]]++
	}

	node := &treeNode{counts: counts, pred: argmaxCounts(counts)}
	if isPure(counts) || len(idx) < t.minSamplesSplit {
		node.isLeaf = true
		return node
	}
	if t.maxDepth > 0 && depth >= t.maxDepth {
		node.isLeaf = true
		return node
	}

	feature, threshold, left, right, ok := t.bestSplit(x, y, idx, counts, p)
	if !ok {
		node.isLeaf = true
		return node
	}

	node.feature = feature
	node.threshold = threshold
	node.left = t.buildNode(x, y, left, depth+1, p)
	node.right = t.buildNode(x, y, right, depth+1, p)
	return node
}

// valueIndex pairs a feature value with its row index for threshold scans.
type valueIndex struct {
	v float64
	i int
}

// bestSplit scans a (possibly subsampled) feature set for the threshold
// with the largest impurity decrease. Returns ok=false when no split
// improves on the parent.
func (t *decisionTree) bestSplit(x [][]float64, y []int, idx []int, parentCounts []int, p int) (feature int, threshold float64, left, right []int, ok bool) {
	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.maxFeatures > 0 && t.maxFeatures < p {
		t.rng.Shuffle(p, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.maxFeatures]
	}

	parent := t.impurity(parentCounts)
	total := len(idx)
	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	pairs := make([]valueIndex, total)
	leftCounts := make([]int, t.nClasses)
	rightCounts := make([]int, t.nClasses)

	for _, f := range features {
		for k, i := range idx {
			pairs[k] = valueIndex{v: x[i][f], i: i}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		// Sweep left to right, moving one row at a time from the right
		// partition into the left and re-evaluating the weighted impurity
		// at every distinct-value boundary.
		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = parentCounts[c]
		}
		for s := 1; s < total; s++ {
			cls := y[pairs[s-1].i]
			leftCounts[cls]++
			rightCounts[cls]--
			if pairs[s].v == pairs[s-1].v {
				continue
			}

			wl := float64(s) / float64(total)
			wr := float64(total-s) / float64(total)
			gain := parent - wl*t.impurity(leftCounts) - wr*t.impurity(rightCounts)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (pairs[s-1].v + pairs[s].v) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, nil, nil, false
	}

	for _, i := range idx {
		if x[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return 0, 0, nil, nil, false
	}
	return bestFeature, bestThreshold, left, right, true
}

func (t *decisionTree) impurity(counts []int) float64 {
	if t.criterion == "entropy" {
		return entropyFromCounts(counts)
	}
	return giniFromCounts(counts)
}

// predict returns the majority class index for a single row.
func (t *decisionTree) predict(row []float64) int {
	node := t.root
	for !node.isLeaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.pred
}

func giniFromCounts(counts []int) float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// argmaxCounts returns the smallest index holding the maximum count, so
// ties always resolve to the lowest class label.
func argmaxCounts(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
