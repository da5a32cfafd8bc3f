// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package coordinate provides coordinate-descent solvers for linear models:
// primal newGLMNET for L1-regularized logistic regression, and dual
// coordinate descent for L2-regularized SVM classification and regression.
//
// Example:
//
//	res := coordinate.SVCDual(ds, coordinate.SquaredHinge, 0.1, coordinate.Config{Eps: 1e-3})
//	fmt.Println(res.Primal, res.Gap())
package coordinate

import (
	"github.com/born-ml/convex/internal/coordinate"
	"github.com/born-ml/convex/internal/dataset"
)

// Loss selects the loss of the dual solvers.
type Loss = coordinate.Loss

// Supported losses.
const (
	Hinge        = coordinate.Hinge
	SquaredHinge = coordinate.SquaredHinge
)

// Config holds solver settings.
type Config = coordinate.Config

// Result is the outcome of a coordinate-descent run.
type Result = coordinate.Result

// ActiveSet partitions coordinate indices into active and shrunk parts.
type ActiveSet = coordinate.ActiveSet

// NewActiveSet returns a fully active set over [0, n).
func NewActiveSet(n int) *ActiveSet {
	return coordinate.NewActiveSet(n)
}

// L1LogisticRegression minimizes ‖w‖₁ + C Σ log(1+exp(-yᵢ w·xᵢ)).
func L1LogisticRegression(ds *dataset.Dataset, c float64, cfg Config) Result {
	return coordinate.L1LogisticRegression(ds, c, cfg)
}

// SVCDual trains an L2-regularized SVM classifier in the dual.
func SVCDual(ds *dataset.Dataset, loss Loss, lambda float64, cfg Config) Result {
	return coordinate.SVCDual(ds, loss, lambda, cfg)
}

// SVRDual trains an L2-regularized SVM regressor in the dual.
func SVRDual(ds *dataset.Dataset, loss Loss, lambda, p float64, cfg Config) Result {
	return coordinate.SVRDual(ds, loss, lambda, p, cfg)
}
