package objective

import (
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/convex/internal/linalg"
)

// hvpStep is the forward-difference step of the default Hessian-vector product.
const hvpStep = 1e-6

// Func adapts plain Go functions to the Objective interface.
//
// Only ValueFn is required. A missing GradFn is replaced by central finite
// differences, a missing HessVecFn by a forward difference of gradients, and a
// missing BatchFn by the full evaluation.
type Func struct {
	Dimension int // m
	Terms     int // n, defaults to 1

	ValueFn   func(x linalg.Vector) float64
	GradFn    func(x linalg.Vector) (float64, linalg.Vector)
	HessVecFn func(x, v linalg.Vector) linalg.Vector
	BatchFn   func(x linalg.Vector, batch []int) (float64, linalg.Vector)
}

// Dim implements Objective.
func (f *Func) Dim() int { return f.Dimension }

// Len implements Objective.
func (f *Func) Len() int {
	if f.Terms <= 0 {
		return 1
	}
	return f.Terms
}

// Value implements Objective.
func (f *Func) Value(x linalg.Vector) float64 {
	mustDim("objective.Func.Value", f.Dimension, x)
	return f.ValueFn(x)
}

// ValueGradient implements Objective.
func (f *Func) ValueGradient(x linalg.Vector) (float64, linalg.Vector) {
	mustDim("objective.Func.ValueGradient", f.Dimension, x)
	if f.GradFn != nil {
		return f.GradFn(x)
	}
	g := fd.Gradient(nil, func(p []float64) float64 {
		return f.ValueFn(linalg.Vector(p))
	}, x, &fd.Settings{Formula: fd.Central})
	return f.ValueFn(x), linalg.Vector(g)
}

// Linearize implements Objective.
func (f *Func) Linearize(x linalg.Vector) (float64, linalg.Vector, Linearization) {
	v, g := f.ValueGradient(x)
	return v, g, &pointLinearization{x: x.Clone(), g: g}
}

// HessianVector implements Objective.
func (f *Func) HessianVector(lin Linearization, v linalg.Vector) linalg.Vector {
	mustDim("objective.Func.HessianVector", f.Dimension, v)
	x := lin.Point()
	if f.HessVecFn != nil {
		return f.HessVecFn(x, v)
	}
	var g0 linalg.Vector
	if p, ok := lin.(*pointLinearization); ok {
		g0 = p.g
	} else {
		_, g0 = f.ValueGradient(x)
	}
	_, g1 := f.ValueGradient(x.AddScaled(hvpStep, v))
	out := g1.Sub(g0)
	out.ScaleInPlace(1 / hvpStep)
	return out
}

// BatchValueGradient implements Objective.
func (f *Func) BatchValueGradient(x linalg.Vector, batch []int) (float64, linalg.Vector) {
	mustDim("objective.Func.BatchValueGradient", f.Dimension, x)
	mustBatch("objective.Func.BatchValueGradient", f.Len(), batch)
	if f.BatchFn != nil {
		return f.BatchFn(x, batch)
	}
	return f.ValueGradient(x)
}
