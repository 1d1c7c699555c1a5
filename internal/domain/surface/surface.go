// Package surface reshapes the per-combination score table into a 2D
// accuracy grid over (n_estimators, max_depth), averaging over the
// remaining grid dimensions. Missing combinations stay NaN and are
// serialized as JSON null, so non-rectangular tables never error.
package surface

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mhusam/heartgrid/internal/domain/search"
)

// Surface is the pivoted accuracy grid. Z is indexed [y][x].
type Surface struct {
	XParam string      `json:"x_param"`
	YParam string      `json:"y_param"`
	X      []int       `json:"x"`
	Y      []int       `json:"y"`
	Z      [][]float64 `json:"-"`
}

// Build pivots the score table: x = sorted unique n_estimators,
// y = sorted unique max_depth, z = mean accuracy over every
// max_features setting observed at that cell.
func Build(table []search.ComboScore) Surface {
	type cell struct{ x, y int }
	buckets := map[cell][]float64{}
	xSet := map[int]struct{}{}
	ySet := map[int]struct{}{}

	for _, row := range table {
		c := cell{x: row.Params.NEstimators, y: row.Params.MaxDepth}
		buckets[c] = append(buckets[c], row.MeanCVAccuracy)
		xSet[c.x] = struct{}{}
		ySet[c.y] = struct{}{}
	}

	s := Surface{
		XParam: "n_estimators",
		YParam: "max_depth",
		X:      sortedKeys(xSet),
		Y:      sortedKeys(ySet),
	}

	s.Z = make([][]float64, len(s.Y))
	for yi, yv := range s.Y {
		zRow := make([]float64, len(s.X))
		for xi, xv := range s.X {
			if scores, ok := buckets[cell{x: xv, y: yv}]; ok {
				zRow[xi] = stat.Mean(scores, nil)
			} else {
				zRow[xi] = math.NaN()
			}
		}
		s.Z[yi] = zRow
	}
	return s
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// MarshalJSON emits Z with NaN cells as null, which plain float64
// marshaling cannot represent.
func (s Surface) MarshalJSON() ([]byte, error) {
	z := make([][]*float64, len(s.Z))
	for i, row := range s.Z {
		zRow := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				zRow[j] = &v
			}
		}
		z[i] = zRow
	}

	type alias struct {
		XParam string       `json:"x_param"`
		YParam string       `json:"y_param"`
		X      []int        `json:"x"`
		Y      []int        `json:"y"`
		Z      [][]*float64 `json:"z"`
	}
	return json.Marshal(alias{XParam: s.XParam, YParam: s.YParam, X: s.X, Y: s.Y, Z: z})
}

// UnmarshalJSON restores null cells to NaN.
func (s *Surface) UnmarshalJSON(data []byte) error {
	type alias struct {
		XParam string       `json:"x_param"`
		YParam string       `json:"y_param"`
		X      []int        `json:"x"`
		Y      []int        `json:"y"`
		Z      [][]*float64 `json:"z"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	s.XParam, s.YParam, s.X, s.Y = a.XParam, a.YParam, a.X, a.Y
	s.Z = make([][]float64, len(a.Z))
	for i, row := range a.Z {
		zRow := make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				zRow[j] = math.NaN()
			} else {
				zRow[j] = *v
			}
		}
		s.Z[i] = zRow
	}
	return nil
}
