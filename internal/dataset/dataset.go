package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/born-ml/convex/internal/linalg"
)

// Dataset is a labeled collection of examples sharing one feature dimension.
type Dataset struct {
	Features    []Feature
	Labels      linalg.Vector
	NumFeatures int
}

// New builds a dataset and validates it.
func New(features []Feature, labels linalg.Vector) (*Dataset, error) {
	if len(features) == 0 {
		return nil, ErrEmptyDataset
	}
	d := &Dataset{Features: features, Labels: labels, NumFeatures: features[0].Dim()}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// Validate checks that labels and features line up and that every feature
// has dimension NumFeatures.
func (d *Dataset) Validate() error {
	if len(d.Features) == 0 {
		return ErrEmptyDataset
	}
	if len(d.Features) != len(d.Labels) {
		return fmt.Errorf("%w: %d features, %d labels", ErrLabelMismatch, len(d.Features), len(d.Labels))
	}
	for i, f := range d.Features {
		if f.Dim() != d.NumFeatures {
			return fmt.Errorf("%w: example %d has dimension %d, want %d", ErrDimensionMismatch, i, f.Dim(), d.NumFeatures)
		}
		if sf, ok := f.(*SparseFeature); ok {
			if err := sf.Validate(); err != nil {
				return fmt.Errorf("example %d: %w", i, err)
			}
		}
	}
	return nil
}

// Subset returns a dataset viewing the examples at idx. Features are shared,
// labels are copied.
func (d *Dataset) Subset(idx []int) *Dataset {
	features := make([]Feature, len(idx))
	labels := linalg.NewVector(len(idx))
	for k, i := range idx {
		features[k] = d.Features[i]
		labels[k] = d.Labels[i]
	}
	return &Dataset{Features: features, Labels: labels, NumFeatures: d.NumFeatures}
}

// Split shuffles the examples with the given seed and cuts them into a
// training part holding trainFraction of the data and a test part with the
// rest. A zero seed uses the current time.
func (d *Dataset) Split(trainFraction float64, seed int64) (train, test *Dataset) {
	if trainFraction <= 0 || trainFraction > 1 {
		panic(fmt.Sprintf("dataset.Split: trainFraction %v outside (0, 1]", trainFraction))
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	perm := rand.New(rand.NewSource(seed)).Perm(d.Len())
	cut := int(trainFraction * float64(d.Len()))
	return d.Subset(perm[:cut]), d.Subset(perm[cut:])
}

// Resize returns a dataset whose features are declared with dimension
// numFeatures. Sparse entries at or beyond numFeatures are dropped and dense
// vectors are truncated or zero-padded. Used to align a test file with the
// dimension of a trained model.
func (d *Dataset) Resize(numFeatures int) *Dataset {
	features := make([]Feature, len(d.Features))
	for i, f := range d.Features {
		switch f := f.(type) {
		case *SparseFeature:
			out := &SparseFeature{NumFeatures: numFeatures}
			for k, j := range f.Index {
				if j < numFeatures {
					out.Index = append(out.Index, j)
					out.Value = append(out.Value, f.Value[k])
				}
			}
			features[i] = out
		default:
			v := linalg.NewVector(numFeatures)
			f.ForEach(func(j int, x float64) {
				if j < numFeatures {
					v[j] = x
				}
			})
			features[i] = &DenseFeature{Value: v}
		}
	}
	return &Dataset{Features: features, Labels: d.Labels.Clone(), NumFeatures: numFeatures}
}

// Classes returns the distinct label values in ascending order.
func (d *Dataset) Classes() []float64 {
	seen := make(map[float64]struct{})
	for _, y := range d.Labels {
		seen[y] = struct{}{}
	}
	out := make([]float64, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Float64s(out)
	return out
}

// Columns returns the transposed (feature-major) view used by coordinate
// descent: column j lists the examples with a non-zero feature j.
func (d *Dataset) Columns() []*SparseFeature {
	cols := make([]*SparseFeature, d.NumFeatures)
	for j := range cols {
		cols[j] = &SparseFeature{NumFeatures: d.Len()}
	}
	for i, f := range d.Features {
		f.ForEach(func(j int, v float64) {
			cols[j].Index = append(cols[j].Index, i)
			cols[j].Value = append(cols[j].Value, v)
		})
	}
	return cols
}

// WithBias returns a dataset whose features carry one extra trailing
// coordinate fixed at value, so that a linear model over it learns an
// intercept. Features are copied.
func (d *Dataset) WithBias(value float64) *Dataset {
	n := d.NumFeatures
	features := make([]Feature, len(d.Features))
	for i, f := range d.Features {
		switch f := f.(type) {
		case *SparseFeature:
			out := &SparseFeature{
				Index:       make([]int, len(f.Index), len(f.Index)+1),
				Value:       make([]float64, len(f.Value), len(f.Value)+1),
				NumFeatures: n + 1,
			}
			copy(out.Index, f.Index)
			copy(out.Value, f.Value)
			out.Index = append(out.Index, n)
			out.Value = append(out.Value, value)
			features[i] = out
		default:
			v := linalg.NewVector(n + 1)
			f.ForEach(func(j int, x float64) { v[j] = x })
			v[n] = value
			features[i] = &DenseFeature{Value: v}
		}
	}
	return &Dataset{Features: features, Labels: d.Labels.Clone(), NumFeatures: n + 1}
}
