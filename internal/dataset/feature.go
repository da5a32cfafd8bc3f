// Package dataset holds the training records consumed by the loss objectives
// and the coordinate-descent solvers: sparse and dense feature vectors, label
// vectors, and readers for the LIBSVM and sparse-matrix text formats.
package dataset

import (
	"fmt"

	"github.com/born-ml/convex/internal/linalg"
)

// Feature is a single example's feature vector.
//
// Implementations must be cheap to iterate: objectives call Dot and
// AddScaledTo once per example per evaluation.
type Feature interface {
	// Dim returns the declared number of features (the dense length).
	Dim() int

	// Dot returns x·f.
	Dot(x linalg.Vector) float64

	// AddScaledTo performs dst += alpha*f.
	AddScaledTo(dst linalg.Vector, alpha float64)

	// SquaredNorm returns f·f.
	SquaredNorm() float64

	// ForEach calls fn for every stored (index, value) pair.
	ForEach(fn func(i int, v float64))
}

// SparseFeature stores only the non-zero entries of a feature vector.
//
// Index and Value are parallel slices. Indices must be distinct and lie in
// [0, NumFeatures).
type SparseFeature struct {
	Index       []int
	Value       []float64
	NumFeatures int
}

// NewSparseFeature builds a validated sparse feature.
func NewSparseFeature(index []int, value []float64, numFeatures int) (*SparseFeature, error) {
	f := &SparseFeature{Index: index, Value: value, NumFeatures: numFeatures}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the sparse-feature invariants.
func (f *SparseFeature) Validate() error {
	if len(f.Index) != len(f.Value) {
		return fmt.Errorf("%w: %d indices, %d values", ErrInvalidFeature, len(f.Index), len(f.Value))
	}
	seen := make(map[int]struct{}, len(f.Index))
	for _, j := range f.Index {
		if j < 0 || j >= f.NumFeatures {
			return fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidFeature, j, f.NumFeatures)
		}
		if _, dup := seen[j]; dup {
			return fmt.Errorf("%w: duplicate index %d", ErrInvalidFeature, j)
		}
		seen[j] = struct{}{}
	}
	return nil
}

// Dim implements Feature.
func (f *SparseFeature) Dim() int { return f.NumFeatures }

// Dot implements Feature.
func (f *SparseFeature) Dot(x linalg.Vector) float64 {
	var sum float64
	for k, j := range f.Index {
		sum += f.Value[k] * x[j]
	}
	return sum
}

// AddScaledTo implements Feature.
func (f *SparseFeature) AddScaledTo(dst linalg.Vector, alpha float64) {
	for k, j := range f.Index {
		dst[j] += alpha * f.Value[k]
	}
}

// SquaredNorm implements Feature.
func (f *SparseFeature) SquaredNorm() float64 {
	var sum float64
	for _, v := range f.Value {
		sum += v * v
	}
	return sum
}

// ForEach implements Feature.
func (f *SparseFeature) ForEach(fn func(i int, v float64)) {
	for k, j := range f.Index {
		fn(j, f.Value[k])
	}
}

// DenseFeature stores every entry of a feature vector.
type DenseFeature struct {
	Value linalg.Vector
}

// NewDenseFeature wraps values as a dense feature.
func NewDenseFeature(values []float64) *DenseFeature {
	return &DenseFeature{Value: linalg.Vector(values)}
}

// Dim implements Feature.
func (f *DenseFeature) Dim() int { return len(f.Value) }

// Dot implements Feature.
func (f *DenseFeature) Dot(x linalg.Vector) float64 {
	return f.Value.Dot(x)
}

// AddScaledTo implements Feature.
func (f *DenseFeature) AddScaledTo(dst linalg.Vector, alpha float64) {
	dst.AddScaledInPlace(alpha, f.Value)
}

// SquaredNorm implements Feature.
func (f *DenseFeature) SquaredNorm() float64 {
	return f.Value.SquaredNorm()
}

// ForEach implements Feature.
func (f *DenseFeature) ForEach(fn func(i int, v float64)) {
	for j, v := range f.Value {
		if v != 0 {
			fn(j, v)
		}
	}
}

// Densify returns the dense form of any feature.
func Densify(f Feature) *DenseFeature {
	out := linalg.NewVector(f.Dim())
	f.ForEach(func(i int, v float64) { out[i] = v })
	return &DenseFeature{Value: out}
}
