// Package scale rescales feature columns to zero mean and unit variance.
// Scaling statistics are learned from the training partition only and
// then applied to both partitions.
package scale

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when Transform runs before Fit.
var ErrNotFitted = errors.New("scaler not fitted")

// ErrEmptyMatrix is returned when Fit receives no rows.
var ErrEmptyMatrix = errors.New("empty feature matrix")

// StandardScaler standardizes columns using population statistics.
type StandardScaler struct {
	mean   []float64
	stddev []float64
	fitted bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit learns per-column mean and population standard deviation.
// Zero-variance columns get a stddev of 1 so Transform maps them to 0.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return ErrEmptyMatrix
	}
	rows, cols := len(x), len(x[0])
	s.mean = make([]float64, cols)
	s.stddev = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = x[i][j]
		}
		mean, sd := stat.PopMeanStdDev(col, nil)
		if sd == 0 {
			sd = 1
		}
		s.mean[j] = mean
		s.stddev[j] = sd
	}
	s.fitted = true
	return nil
}

// Transform returns a standardized copy of x using the fitted statistics.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.stddev[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits on x and returns its standardized copy.
func (s *StandardScaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// Mean exposes the fitted per-column means.
func (s *StandardScaler) Mean() []float64 { return s.mean }

// StdDev exposes the fitted per-column standard deviations.
func (s *StandardScaler) StdDev() []float64 { return s.stddev }
