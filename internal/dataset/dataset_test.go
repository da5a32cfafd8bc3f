package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseFeature_Ops(t *testing.T) {
	f, err := NewSparseFeature([]int{0, 2}, []float64{2, -1}, 3)
	require.NoError(t, err)

	x := linalg.Vector{1, 5, 3}
	assert.InDelta(t, -1.0, f.Dot(x), 1e-12)
	assert.InDelta(t, 5.0, f.SquaredNorm(), 1e-12)

	dst := linalg.Vector{1, 1, 1}
	f.AddScaledTo(dst, 2)
	assert.Equal(t, linalg.Vector{5, 1, -1}, dst)

	assert.Equal(t, linalg.Vector{2, 0, -1}, Densify(f).Value)
}

func TestSparseFeature_Validate(t *testing.T) {
	tests := []struct {
		name  string
		index []int
		value []float64
	}{
		{"length mismatch", []int{0}, []float64{1, 2}},
		{"out of range", []int{3}, []float64{1}},
		{"negative", []int{-1}, []float64{1}},
		{"duplicate", []int{1, 1}, []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSparseFeature(tt.index, tt.value, 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFeature)
		})
	}
}

func TestDenseFeature_MatchesSparse(t *testing.T) {
	sparse := &SparseFeature{Index: []int{1, 3}, Value: []float64{4, 0.5}, NumFeatures: 4}
	dense := NewDenseFeature([]float64{0, 4, 0, 0.5})
	x := linalg.Vector{1, 2, 3, 4}

	assert.InDelta(t, sparse.Dot(x), dense.Dot(x), 1e-12)
	assert.InDelta(t, sparse.SquaredNorm(), dense.SquaredNorm(), 1e-12)
}

func TestReadLibSVM(t *testing.T) {
	input := `# comment
+1 1:0.5 3:2
-1 2:1

1 0:7
`
	d, err := ReadLibSVM(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())
	assert.Equal(t, 4, d.NumFeatures)
	assert.Equal(t, linalg.Vector{1, -1, 1}, d.Labels)
	assert.InDelta(t, 7.0, d.Features[2].Dot(linalg.Vector{1, 0, 0, 0}), 1e-12)
	assert.Equal(t, []float64{-1, 1}, d.Classes())
}

func TestReadLibSVM_Errors(t *testing.T) {
	_, err := ReadLibSVM(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = ReadLibSVM(strings.NewReader("1 1:2\nx 1:2\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	_, err = ReadLibSVM(strings.NewReader("1 1-2\n"))
	require.Error(t, err)

	_, err = ReadLibSVM(strings.NewReader("1 1:2 1:3\n"))
	assert.ErrorIs(t, err, ErrInvalidFeature)
}

func TestLibSVM_WriteRead(t *testing.T) {
	d, err := ReadLibSVM(strings.NewReader("1 0:0.25 2:3\n-1 1:-4\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLibSVM(&buf, d))
	assert.Equal(t, "1 0:0.25 2:3\n-1 1:-4\n", buf.String())
}

func TestLoadSparsePair(t *testing.T) {
	dir := t.TempDir()
	featPath := filepath.Join(dir, "train.feat")
	labelPath := filepath.Join(dir, "train.label")
	require.NoError(t, os.WriteFile(featPath, []byte("2 3\n0 1.5 2 1\n1 2\n"), 0o600))
	require.NoError(t, os.WriteFile(labelPath, []byte("1\n-1\n"), 0o600))

	d, err := LoadSparsePair(featPath, labelPath)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 3, d.NumFeatures)

	require.NoError(t, os.WriteFile(featPath, []byte("3 3\n0 1.5\n"), 0o600))
	_, err = LoadSparsePair(featPath, labelPath)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestDataset_Validate(t *testing.T) {
	_, err := New([]Feature{NewDenseFeature([]float64{1, 2})}, linalg.Vector{1, 2})
	assert.ErrorIs(t, err, ErrLabelMismatch)

	_, err = New([]Feature{NewDenseFeature([]float64{1, 2}), NewDenseFeature([]float64{1})}, linalg.Vector{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestDataset_SplitAndSubset(t *testing.T) {
	features := make([]Feature, 10)
	labels := linalg.NewVector(10)
	for i := range features {
		features[i] = NewDenseFeature([]float64{float64(i)})
		labels[i] = float64(i)
	}
	d, err := New(features, labels)
	require.NoError(t, err)

	train, test := d.Split(0.7, 42)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())

	seen := map[float64]bool{}
	for _, y := range append(train.Labels.Clone(), test.Labels...) {
		seen[y] = true
	}
	assert.Len(t, seen, 10, "split must be a partition")

	again, _ := d.Split(0.7, 42)
	assert.Equal(t, train.Labels, again.Labels, "same seed, same split")
}

func TestDataset_ResizeAndColumns(t *testing.T) {
	d, err := ReadLibSVM(strings.NewReader("1 0:1 3:2\n-1 1:5\n"))
	require.NoError(t, err)

	small := d.Resize(2)
	assert.Equal(t, 2, small.NumFeatures)
	require.NoError(t, small.Validate())
	assert.InDelta(t, 1.0, small.Features[0].SquaredNorm(), 1e-12)

	cols := d.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, []int{0}, cols[0].Index)
	assert.Equal(t, []int{1}, cols[1].Index)
	assert.Empty(t, cols[2].Index)
	assert.Equal(t, []float64{2}, cols[3].Value)
}

func TestDataset_WithBias(t *testing.T) {
	sparse, err := NewSparseFeature([]int{1}, []float64{2}, 3)
	require.NoError(t, err)
	d, err := New([]Feature{sparse, NewDenseFeature([]float64{1, 0, 4})}, linalg.Vector{1, -1})
	require.NoError(t, err)

	b := d.WithBias(1)
	require.NoError(t, b.Validate())
	assert.Equal(t, 4, b.NumFeatures)
	assert.Equal(t, linalg.Vector{0, 2, 0, 1}, Densify(b.Features[0]).Value)
	assert.Equal(t, linalg.Vector{1, 0, 4, 1}, Densify(b.Features[1]).Value)

	// The source dataset is untouched.
	assert.Equal(t, 3, sparse.NumFeatures)
	assert.Equal(t, []int{1}, sparse.Index)
}
