package coordinate

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
	"github.com/born-ml/convex/internal/optim"
)

func newDataset(t *testing.T, rows [][]float64, labels []float64) *dataset.Dataset {
	t.Helper()
	features := make([]dataset.Feature, len(rows))
	for i, r := range rows {
		features[i] = dataset.NewDenseFeature(r)
	}
	ds, err := dataset.New(features, linalg.Vector(labels))
	require.NoError(t, err)
	return ds
}

// separable returns four points split by the first coordinate.
func separable(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		[][]float64{{1, 2}, {2, 1}, {-1, -2}, {-2, -1}},
		[]float64{1, 1, -1, -1})
}

func newSmoothSVM(ds *dataset.Dataset, lambda float64) *objective.Linear {
	return objective.NewL2SmoothSVM(ds.NumFeatures, ds.Features, ds.Labels, lambda)
}

func newL1Logistic(ds *dataset.Dataset, lambda float64) *objective.Linear {
	return objective.NewL1Logistic(ds.NumFeatures, ds.Features, ds.Labels, lambda)
}

func accuracy(ds *dataset.Dataset, w linalg.Vector) float64 {
	correct := 0
	for i, f := range ds.Features {
		if linalg.Sign(f.Dot(w)) == ds.Labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(ds.Len())
}

func TestActiveSet_ShrinkAndReactivate(t *testing.T) {
	a := NewActiveSet(5)
	assert.Equal(t, 5, a.Len())
	assert.True(t, a.Full())

	a.Shrink(1)
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 4, a.At(1), "last active index moves into the hole")
	assert.False(t, a.Full())

	a.Pin()
	assert.True(t, a.Full())
	a.Shrink(0)
	assert.Equal(t, 3, a.Len())
	a.Reactivate()
	assert.Equal(t, 4, a.Len(), "reactivation stops at the pinned limit")

	a.Release()
	assert.Equal(t, 5, a.Len())
	seen := make([]int, a.Size())
	for i := range seen {
		seen[i] = a.At(i)
	}
	sort.Ints(seen)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestActiveSet_ShuffleKeepsSuffix(t *testing.T) {
	a := NewActiveSet(6)
	a.Shrink(0)
	a.Shrink(0)
	suffix := []int{a.index[4], a.index[5]}

	a.Shuffle(rand.New(rand.NewSource(3)))
	assert.Equal(t, suffix, []int{a.index[4], a.index[5]})

	prefix := append([]int(nil), a.index[:4]...)
	sort.Ints(prefix)
	assert.Equal(t, []int{1, 2, 3, 4}, prefix)
}

func TestSVCDual_Hinge(t *testing.T) {
	ds := separable(t)
	lambda := 1.0
	sweeps := 0
	res := SVCDual(ds, Hinge, lambda, Config{
		Eps:  1e-6,
		Seed: 1,
		Sweep: func(_ int, alpha linalg.Vector) {
			sweeps++
			for i, a := range alpha {
				require.GreaterOrEqual(t, a, 0.0, "alpha[%d]", i)
				require.LessOrEqual(t, a, 1/lambda, "alpha[%d]", i)
			}
		},
	})

	assert.Equal(t, optimize.GradientThreshold, res.Status)
	assert.Equal(t, res.Iterations, sweeps)
	assert.Equal(t, 1.0, accuracy(ds, res.W))

	// w = Σ αᵢ yᵢ xᵢ
	w := linalg.NewVector(ds.NumFeatures)
	for i, f := range ds.Features {
		f.AddScaledTo(w, res.Alpha[i]*ds.Labels[i])
	}
	assert.InDeltaSlice(t, w, res.W, 1e-10)

	assert.GreaterOrEqual(t, res.Gap(), -1e-9)
	assert.Less(t, res.Gap(), 1e-3)
}

func TestSVCDual_SquaredHinge(t *testing.T) {
	ds := newDataset(t,
		[][]float64{{1, 2}, {2, 1}, {-1, -2}, {-2, -1}, {0.5, -0.2}},
		[]float64{1, 1, -1, -1, -1})

	res := SVCDual(ds, SquaredHinge, 0.5, Config{
		Eps:  1e-8,
		Seed: 2,
		Sweep: func(_ int, alpha linalg.Vector) {
			for _, a := range alpha {
				require.GreaterOrEqual(t, a, 0.0)
			}
		},
	})

	assert.True(t, res.Converged())
	assert.GreaterOrEqual(t, res.Gap(), -1e-9)
	assert.Less(t, res.Gap(), 1e-4)

	// The primal minimizer has a vanishing gradient.
	obj := newSmoothSVM(ds, 0.5)
	_, g := obj.ValueGradient(res.W)
	assert.Less(t, g.Norm(2), 1e-2)
}

func TestSVCDual_Recorder(t *testing.T) {
	var fs []float64
	SVCDual(separable(t), Hinge, 1, Config{
		Eps:  1e-12,
		Seed: 5,
		Recorder: optim.RecorderFunc(func(it optim.Iteration) {
			fs = append(fs, it.F)
		}),
	})
	for _, f := range fs {
		assert.False(t, math.IsNaN(f))
	}
}

func TestSVRDual(t *testing.T) {
	ds := newDataset(t, [][]float64{{1}, {2}, {3}, {4}}, []float64{2, 4, 6, 8})

	for _, loss := range []Loss{Hinge, SquaredHinge} {
		t.Run(loss.String(), func(t *testing.T) {
			lambda := 0.01
			res := SVRDual(ds, loss, lambda, 0.1, Config{
				Eps:  1e-8,
				Seed: 7,
				Sweep: func(_ int, beta linalg.Vector) {
					if loss != Hinge {
						return
					}
					for _, b := range beta {
						require.LessOrEqual(t, math.Abs(b), 1/lambda)
					}
				},
			})

			assert.True(t, res.Converged())
			assert.InDelta(t, 2, res.W[0], 0.05)
			assert.GreaterOrEqual(t, res.Gap(), -1e-9)
			assert.Less(t, res.Gap(), 1e-3)
		})
	}
}

func TestSVRDual_InsideTube(t *testing.T) {
	// Every target is within p of zero, so w = 0 and β = 0 are optimal.
	ds := newDataset(t, [][]float64{{1}, {2}}, []float64{0.05, -0.05})
	res := SVRDual(ds, Hinge, 1, 0.1, Config{Seed: 1})

	assert.True(t, res.Converged())
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.W.NNZ())
	assert.Equal(t, 0, res.Alpha.NNZ())
}

func TestL1LogisticRegression(t *testing.T) {
	// The second feature is balanced within each class and carries no signal.
	ds := newDataset(t,
		[][]float64{{1, 0.1}, {1, -0.1}, {-1, 0.1}, {-1, -0.1}},
		[]float64{1, 1, -1, -1})

	res := L1LogisticRegression(ds, 1, Config{Eps: 1e-8, Seed: 1})

	require.True(t, res.Converged(), "status %v", res.Status)
	assert.Nil(t, res.Alpha)
	// 1 = 4σ(-w₀) at the optimum.
	assert.InDelta(t, math.Log(3), res.W[0], 1e-4)
	assert.Equal(t, 0.0, res.W[1], "uninformative feature must be exactly zero")
	assert.Equal(t, 1.0, accuracy(ds, res.W))
}

func TestL1LogisticRegression_StrongPenaltyGivesZero(t *testing.T) {
	// With C small the subgradient at zero already contains 0.
	res := L1LogisticRegression(separable(t), 0.1, Config{Seed: 1})

	assert.True(t, res.Converged())
	assert.Equal(t, 0, res.W.NNZ())
	assert.Equal(t, 0, res.Iterations)
}

func TestL1LogisticRegression_MatchesPrimal(t *testing.T) {
	ds := newDataset(t,
		[][]float64{{1, 2, 0}, {2, 1, 1}, {-1, -2, 0}, {-2, -1, 1}, {0.5, -0.5, 1}, {-0.3, 0.4, 0}},
		[]float64{1, 1, -1, -1, -1, 1})
	c := 2.0

	res := L1LogisticRegression(ds, c, Config{Eps: 1e-8, Seed: 3})
	require.True(t, res.Converged())

	obj := newL1Logistic(ds, 1/c)
	assert.InDelta(t, obj.Value(res.W), res.Primal, 1e-12)

	// Optimality: the pseudo-gradient vanishes.
	_, g := obj.ValueGradient(res.W)
	assert.Less(t, g.Norm(2), 1e-4)
}

func TestSolvers_PanicOnBadInput(t *testing.T) {
	ds := separable(t)
	assert.Panics(t, func() { SVCDual(ds, Hinge, 0, Config{}) })
	assert.Panics(t, func() { SVCDual(ds, Loss(7), 1, Config{}) })
	assert.Panics(t, func() { SVRDual(ds, Hinge, 1, -1, Config{}) })
	assert.Panics(t, func() { L1LogisticRegression(ds, -1, Config{}) })

	bad := newDataset(t, [][]float64{{1}, {2}}, []float64{0, 1})
	assert.Panics(t, func() { SVCDual(bad, Hinge, 1, Config{}) })
	assert.Panics(t, func() { L1LogisticRegression(bad, 1, Config{}) })
}

func TestSolvers_IterationLimit(t *testing.T) {
	res := SVCDual(separable(t), Hinge, 1, Config{Eps: 1e-300, MaxIter: 2, Seed: 1})
	assert.Equal(t, optimize.IterationLimit, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.False(t, res.Converged())
}
