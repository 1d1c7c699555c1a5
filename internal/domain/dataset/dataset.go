// Package dataset loads the fixed tabular dataset used by the tuner.
// The CSV is read once at startup, categorical columns are one-hot
// expanded, and the result is immutable for the process lifetime.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

// previewRows is how many raw rows the dashboard preview shows.
const previewRows = 5

// Dataset is the encoded, immutable view of the loaded CSV.
type Dataset struct {
	path         string
	targetColumn string
	rawColumns   []string
	featureNames []string
	x            [][]float64
	y            []int
	classes      []int
	rawHead      [][]string
	numRows      int
}

// Load reads and encodes the CSV at path. Columns listed in categorical
// are one-hot expanded into <column>_<value> features; every other
// feature value must parse as a float64. The target column must hold
// integer class labels and at least two distinct classes.
func Load(path, targetColumn string, categorical []string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer f.Close()

	return Parse(f, path, targetColumn, categorical)
}

// Parse reads CSV content from r. Split out from Load for tests.
func Parse(r io.Reader, path, targetColumn string, categorical []string) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header and at least one row", ErrEmptyDataset)
	}

	header := records[0]
	rows := records[1:]

	targetIdx := -1
	for i, col := range header {
		if col == targetColumn {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: column %q not in header", ErrMissingTarget, targetColumn)
	}

	catSet := make(map[string]bool, len(categorical))
	for _, c := range categorical {
		catSet[c] = true
	}

	ds := &Dataset{
		path:         path,
		targetColumn: targetColumn,
		rawColumns:   append([]string(nil), header...),
		numRows:      len(rows),
	}

	// Preview keeps raw string rows for the dashboard.
	for i := 0; i < len(rows) && i < previewRows; i++ {
		ds.rawHead = append(ds.rawHead, append([]string(nil), rows[i]...))
	}

	// Labels first: they decide the class list.
	ds.y = make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrMalformedCSV, i+1, len(row), len(header))
		}
		label, err := strconv.Atoi(row[targetIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: target value %q at row %d", ErrBadLabel, row[targetIdx], i+1)
		}
		ds.y[i] = label
	}
	ds.classes = distinctSortedLabels(ds.y)
	if len(ds.classes) < 2 {
		return nil, fmt.Errorf("%w: found %d distinct classes", ErrTooFewClasses, len(ds.classes))
	}

	// Encode features column by column, preserving header order.
	columns := make([][]float64, 0, len(header))
	for j, col := range header {
		if j == targetIdx {
			continue
		}
		values := make([]string, len(rows))
		for i := range rows {
			values[i] = rows[i][j]
		}
		if catSet[col] {
			names, encoded := oneHot(col, values)
			ds.featureNames = append(ds.featureNames, names...)
			columns = append(columns, encoded...)
			continue
		}
		numeric := make([]float64, len(values))
		for i, v := range values {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(parsed) {
				return nil, fmt.Errorf("%w: column %q value %q at row %d", ErrNonNumericFeature, col, v, i+1)
			}
			numeric[i] = parsed
		}
		ds.featureNames = append(ds.featureNames, col)
		columns = append(columns, numeric)
	}

	// Transpose column-major encodings into row-major X.
	ds.x = make([][]float64, len(rows))
	for i := range rows {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = columns[j][i]
		}
		ds.x[i] = row
	}

	return ds, nil
}

// oneHot expands a categorical column into one indicator column per
// distinct value, named <column>_<value> with values in sorted order.
func oneHot(column string, values []string) ([]string, [][]float64) {
	seen := map[string]bool{}
	distinct := make([]string, 0)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Strings(distinct)

	names := make([]string, len(distinct))
	encoded := make([][]float64, len(distinct))
	for k, val := range distinct {
		names[k] = column + "_" + val
		indicator := make([]float64, len(values))
		for i, v := range values {
			if v == val {
				indicator[i] = 1
			}
		}
		encoded[k] = indicator
	}
	return names, encoded
}

func distinctSortedLabels(y []int) []int {
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

// X returns the encoded feature matrix. Callers must not mutate it.
func (d *Dataset) X() [][]float64 { return d.x }

// Y returns the label vector. Callers must not mutate it.
func (d *Dataset) Y() []int { return d.y }

// Classes returns the sorted distinct labels.
func (d *Dataset) Classes() []int {
	out := make([]int, len(d.classes))
	copy(out, d.classes)
	return out
}

// FeatureNames returns the encoded feature column names.
func (d *Dataset) FeatureNames() []string {
	out := make([]string, len(d.featureNames))
	copy(out, d.featureNames)
	return out
}

// RawColumns returns the original CSV header.
func (d *Dataset) RawColumns() []string {
	out := make([]string, len(d.rawColumns))
	copy(out, d.rawColumns)
	return out
}

// NumRows reports the row count.
func (d *Dataset) NumRows() int { return d.numRows }

// NumFeatures reports the encoded feature count.
func (d *Dataset) NumFeatures() int { return len(d.featureNames) }

// TargetColumn reports the configured label column name.
func (d *Dataset) TargetColumn() string { return d.targetColumn }

// Head returns up to five raw rows for display.
func (d *Dataset) Head() [][]string {
	out := make([][]string, len(d.rawHead))
	for i, row := range d.rawHead {
		out[i] = append([]string(nil), row...)
	}
	return out
}
