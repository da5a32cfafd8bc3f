// Package objective defines the contract between the solvers and the
// functions they minimize, plus the loss functions used to train linear
// models.
//
// An Objective exposes its dimension, the number of additive terms it is
// built from (training examples for the losses in this package), full and
// minibatch evaluation, and Hessian-vector products. Second-order solvers
// call Linearize first and pass the returned Linearization to
// HessianVector; this keeps per-point state out of the objective itself so
// one objective can be shared by several solver runs.
//
// Example:
//
//	obj := objective.NewL2Logistic(ds.NumFeatures, ds.Features, ds.Labels, 1.0)
//	f, g := obj.ValueGradient(linalg.NewVector(obj.Dim()))
package objective

import (
	"fmt"

	"github.com/born-ml/convex/internal/linalg"
)

// Objective is a function f: R^m -> R that is a sum of n terms.
type Objective interface {
	// Dim returns m, the length of the argument.
	Dim() int

	// Len returns n, the number of additive terms available to minibatches.
	Len() int

	// Value returns f(x).
	Value(x linalg.Vector) float64

	// ValueGradient returns f(x) and the (pseudo-)gradient at x.
	ValueGradient(x linalg.Vector) (float64, linalg.Vector)

	// Linearize returns f(x), the gradient at x and the context that
	// HessianVector needs to form products with the Hessian at x.
	Linearize(x linalg.Vector) (float64, linalg.Vector, Linearization)

	// HessianVector returns H(x)·v for the point captured by lin.
	HessianVector(lin Linearization, v linalg.Vector) linalg.Vector

	// BatchValueGradient evaluates the objective restricted to the terms in
	// batch. Indices must lie in [0, Len()).
	BatchValueGradient(x linalg.Vector, batch []int) (float64, linalg.Vector)
}

// Linearization is the state captured at a point by Objective.Linearize.
type Linearization interface {
	// Point returns the point the linearization was taken at.
	Point() linalg.Vector
}

// Gradient returns only the gradient of obj at x.
func Gradient(obj Objective, x linalg.Vector) linalg.Vector {
	_, g := obj.ValueGradient(x)
	return g
}

// pointLinearization is the minimal Linearization: the point and its gradient.
type pointLinearization struct {
	x linalg.Vector
	g linalg.Vector
}

func (p *pointLinearization) Point() linalg.Vector { return p.x }

func mustDim(name string, want int, x linalg.Vector) {
	if len(x) != want {
		panic(fmt.Sprintf("%s: argument has length %d, objective dimension is %d", name, len(x), want))
	}
}

func mustBatch(name string, n int, batch []int) {
	for _, i := range batch {
		if i < 0 || i >= n {
			panic(fmt.Sprintf("%s: batch index %d outside [0, %d)", name, i, n))
		}
	}
}
