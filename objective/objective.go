// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package objective provides the functions the solvers minimize.
//
// An Objective is a sum of Len() terms over a vector of dimension Dim(). It
// evaluates values, gradients and Hessian-vector products, over all terms or
// over a minibatch. Two implementations are provided:
//   - Linear: a per-example loss of the margin w·x plus an L1 or L2 penalty,
//     with one constructor per loss/penalty pair
//   - Func: plain Go functions, with finite-difference defaults for the
//     derivatives that are not supplied
//
// Example:
//
//	obj := objective.NewL2Logistic(ds.NumFeatures, ds.Features, ds.Labels, 1)
//	f, g := obj.ValueGradient(linalg.NewVector(obj.Dim()))
package objective

import (
	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// Objective is the contract every solver minimizes.
type Objective = objective.Objective

// Linearization carries the state needed for Hessian-vector products at one
// point.
type Linearization = objective.Linearization

// Func adapts plain functions into an Objective.
type Func = objective.Func

// Linear is a per-example loss plus a regularizer.
type Linear = objective.Linear

// PointLoss is the loss of one example as a function of its margin.
type PointLoss = objective.PointLoss

// Regularizer is the penalty added to a Linear objective.
type Regularizer = objective.Regularizer

// Losses.
type (
	Logistic                  = objective.Logistic
	Probit                    = objective.Probit
	Squared                   = objective.Squared
	SquaredHinge              = objective.SquaredHinge
	Hinge                     = objective.Hinge
	HuberHinge                = objective.HuberHinge
	EpsilonInsensitive        = objective.EpsilonInsensitive
	SquaredEpsilonInsensitive = objective.SquaredEpsilonInsensitive
)

// Penalties.
type (
	L1 = objective.L1
	L2 = objective.L2
)

// Gradient returns the gradient of obj at x.
func Gradient(obj Objective, x linalg.Vector) linalg.Vector {
	return objective.Gradient(obj, x)
}

// PseudoGradientNorm returns the norm of the L1 pseudo-gradient given the
// smooth gradient g at x.
func PseudoGradientNorm(g, x linalg.Vector, lambda float64) float64 {
	return objective.PseudoGradientNorm(g, x, lambda)
}

// NewLinear builds a Linear objective from any loss and regularizer.
func NewLinear(m int, features []dataset.Feature, labels linalg.Vector, loss PointLoss, reg Regularizer) *Linear {
	return objective.NewLinear(m, features, labels, loss, reg)
}

// NewL2Logistic returns the L2-regularized logistic loss.
func NewL2Logistic(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL2Logistic(m, features, y, lambda)
}

// NewL1Logistic returns the L1-regularized logistic loss.
func NewL1Logistic(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL1Logistic(m, features, y, lambda)
}

// NewL2Probit returns the L2-regularized probit loss.
func NewL2Probit(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL2Probit(m, features, y, lambda)
}

// NewL1Probit returns the L1-regularized probit loss.
func NewL1Probit(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL1Probit(m, features, y, lambda)
}

// NewL2LeastSquares returns ridge regression.
func NewL2LeastSquares(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL2LeastSquares(m, features, y, lambda)
}

// NewL1LeastSquares returns lasso regression.
func NewL1LeastSquares(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL1LeastSquares(m, features, y, lambda)
}

// NewL2SmoothSVM returns the L2-regularized squared hinge loss.
func NewL2SmoothSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL2SmoothSVM(m, features, y, lambda)
}

// NewL1SmoothSVM returns the L1-regularized squared hinge loss.
func NewL1SmoothSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL1SmoothSVM(m, features, y, lambda)
}

// NewL2HuberSVM returns the L2-regularized Huber hinge loss with threshold h.
func NewL2HuberSVM(m int, features []dataset.Feature, y linalg.Vector, h, lambda float64) *Linear {
	return objective.NewL2HuberSVM(m, features, y, h, lambda)
}

// NewL1HuberSVM returns the L1-regularized Huber hinge loss with threshold h.
func NewL1HuberSVM(m int, features []dataset.Feature, y linalg.Vector, h, lambda float64) *Linear {
	return objective.NewL1HuberSVM(m, features, y, h, lambda)
}

// NewL2HingeSVM returns the L2-regularized hinge loss.
func NewL2HingeSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return objective.NewL2HingeSVM(m, features, y, lambda)
}

// NewL2HingeSVR returns the L2-regularized ε-insensitive loss with width p.
func NewL2HingeSVR(m int, features []dataset.Feature, y linalg.Vector, lambda, p float64) *Linear {
	return objective.NewL2HingeSVR(m, features, y, lambda, p)
}

// NewL2SmoothSVR returns the L2-regularized squared ε-insensitive loss.
func NewL2SmoothSVR(m int, features []dataset.Feature, y linalg.Vector, lambda, p float64) *Linear {
	return objective.NewL2SmoothSVR(m, features, y, lambda, p)
}
