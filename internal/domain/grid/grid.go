// Package grid builds hyperparameter candidate sets and enumerates their
// Cartesian product.
package grid

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Feature-subset strategies accepted for max_features.
const (
	MaxFeaturesAuto = "auto"
	MaxFeaturesSqrt = "sqrt"
	MaxFeaturesLog2 = "log2"
)

// Criteria accepted for the split quality measure.
const (
	CriterionGini    = "gini"
	CriterionEntropy = "entropy"
)

// Range describes an inclusive numeric candidate range.
type Range[T constraints.Integer | constraints.Float] struct {
	Min  T
	Max  T
	Step T
}

// Expand materializes the range into an ordered candidate set. The first
// element is always Min; every element is <= Max; consecutive elements
// are exactly Step apart.
func (r Range[T]) Expand() ([]T, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %v", ErrInvalidRange, r.Step)
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("%w: min %v exceeds max %v", ErrInvalidRange, r.Min, r.Max)
	}
	var out []T
	for v := r.Min; v <= r.Max; v += r.Step {
		out = append(out, v)
	}
	return out, nil
}

// ParamGrid holds the candidate set of every tuned hyperparameter.
// Dimension order is fixed: n_estimators, then max_depth, then
// max_features. Combos enumerates in that order with the first
// dimension outermost, which also defines tie-break priority downstream.
type ParamGrid struct {
	NEstimators []int
	MaxDepth    []int
	MaxFeatures []string
}

// Combo is one point of the grid.
type Combo struct {
	NEstimators int    `json:"n_estimators"`
	MaxDepth    int    `json:"max_depth"`
	MaxFeatures string `json:"max_features"`
}

// Build expands the numeric ranges and validates every dimension.
func Build(nEstimators, maxDepth Range[int], maxFeatures []string) (ParamGrid, error) {
	g := ParamGrid{MaxFeatures: maxFeatures}

	var err error
	if g.NEstimators, err = nEstimators.Expand(); err != nil {
		return ParamGrid{}, fmt.Errorf("n_estimators: %w", err)
	}
	if g.MaxDepth, err = maxDepth.Expand(); err != nil {
		return ParamGrid{}, fmt.Errorf("max_depth: %w", err)
	}
	if err := g.Validate(); err != nil {
		return ParamGrid{}, err
	}
	return g, nil
}

// Validate rejects empty dimensions and unknown categorical values.
func (g ParamGrid) Validate() error {
	if len(g.NEstimators) == 0 {
		return fmt.Errorf("%w: no candidate values for parameter n_estimators", ErrEmptyDimension)
	}
	if len(g.MaxDepth) == 0 {
		return fmt.Errorf("%w: no candidate values for parameter max_depth", ErrEmptyDimension)
	}
	if len(g.MaxFeatures) == 0 {
		return fmt.Errorf("%w: no candidate values for parameter max_features", ErrEmptyDimension)
	}
	for _, mf := range g.MaxFeatures {
		switch mf {
		case MaxFeaturesAuto, MaxFeaturesSqrt, MaxFeaturesLog2:
		default:
			return fmt.Errorf("%w: max_features value %q", ErrUnknownValue, mf)
		}
	}
	return nil
}

// Size returns the number of grid points.
func (g ParamGrid) Size() int {
	return len(g.NEstimators) * len(g.MaxDepth) * len(g.MaxFeatures)
}

// Combos enumerates every grid point: n_estimators outermost, then
// max_depth, then max_features.
func (g ParamGrid) Combos() []Combo {
	out := make([]Combo, 0, g.Size())
	for _, ne := range g.NEstimators {
		for _, md := range g.MaxDepth {
			for _, mf := range g.MaxFeatures {
				out = append(out, Combo{NEstimators: ne, MaxDepth: md, MaxFeatures: mf})
			}
		}
	}
	return out
}

// String renders a combo the way the dashboard displays best parameters.
func (c Combo) String() string {
	return fmt.Sprintf("{n_estimators: %d, max_depth: %d, max_features: %s}",
		c.NEstimators, c.MaxDepth, c.MaxFeatures)
}
