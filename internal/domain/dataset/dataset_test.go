package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `age,sex,chol,target
63,1,233,1
37,1,250,1
41,0,204,0
56,1,236,1
57,0,354,0
44,0,283,0
52,1,199,1
`

func parseSample(t *testing.T, categorical []string) *Dataset {
	t.Helper()
	ds, err := Parse(strings.NewReader(sampleCSV), "sample.csv", "target", categorical)
	require.NoError(t, err)
	return ds
}

func TestParse(t *testing.T) {
	t.Run("numeric columns stay as single features", func(t *testing.T) {
		ds := parseSample(t, nil)

		assert.Equal(t, 7, ds.NumRows())
		assert.Equal(t, 3, ds.NumFeatures())
		assert.Equal(t, []string{"age", "sex", "chol"}, ds.FeatureNames())
		assert.Equal(t, []int{1, 1, 0, 1, 0, 0, 1}, ds.Y())
		assert.Equal(t, []int{0, 1}, ds.Classes())
		assert.Equal(t, []float64{63, 1, 233}, ds.X()[0])
	})

	t.Run("categorical columns one-hot expand in sorted value order", func(t *testing.T) {
		ds := parseSample(t, []string{"sex"})

		assert.Equal(t, []string{"age", "sex_0", "sex_1", "chol"}, ds.FeatureNames())
		assert.Equal(t, 4, ds.NumFeatures())
		// Row 0 has sex=1, so sex_0 is 0 and sex_1 is 1.
		assert.Equal(t, []float64{63, 0, 1, 233}, ds.X()[0])
		// Row 2 has sex=0.
		assert.Equal(t, []float64{41, 1, 0, 204}, ds.X()[2])
	})

	t.Run("head keeps the first raw rows for the preview", func(t *testing.T) {
		ds := parseSample(t, nil)
		head := ds.Head()
		require.Len(t, head, 5)
		assert.Equal(t, []string{"63", "1", "233", "1"}, head[0])
		assert.Equal(t, []string{"age", "sex", "chol", "target"}, ds.RawColumns())
	})

	t.Run("missing target column", func(t *testing.T) {
		_, err := Parse(strings.NewReader(sampleCSV), "s.csv", "label", nil)
		assert.ErrorIs(t, err, ErrMissingTarget)
	})

	t.Run("non-integer label", func(t *testing.T) {
		csv := "a,target\n1,yes\n2,no\n"
		_, err := Parse(strings.NewReader(csv), "s.csv", "target", nil)
		assert.ErrorIs(t, err, ErrBadLabel)
	})

	t.Run("single class dataset", func(t *testing.T) {
		csv := "a,target\n1,1\n2,1\n"
		_, err := Parse(strings.NewReader(csv), "s.csv", "target", nil)
		assert.ErrorIs(t, err, ErrTooFewClasses)
	})

	t.Run("non-numeric feature outside categorical list", func(t *testing.T) {
		csv := "a,target\nlow,1\nhigh,0\n"
		_, err := Parse(strings.NewReader(csv), "s.csv", "target", nil)
		assert.ErrorIs(t, err, ErrNonNumericFeature)
	})

	t.Run("same column as categorical is accepted", func(t *testing.T) {
		csv := "a,target\nlow,1\nhigh,0\n"
		ds, err := Parse(strings.NewReader(csv), "s.csv", "target", []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a_high", "a_low"}, ds.FeatureNames())
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Parse(strings.NewReader("a,target\n"), "s.csv", "target", nil)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.csv", "target", nil)
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestAccessorsCopyState(t *testing.T) {
	ds := parseSample(t, nil)

	classes := ds.Classes()
	classes[0] = 99
	assert.Equal(t, []int{0, 1}, ds.Classes())

	names := ds.FeatureNames()
	names[0] = "mutated"
	assert.Equal(t, "age", ds.FeatureNames()[0])

	head := ds.Head()
	head[0][0] = "mutated"
	assert.Equal(t, "63", ds.Head()[0][0])
}
