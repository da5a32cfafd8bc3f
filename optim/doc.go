// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides iterative solvers that minimize the objectives of
// package objective.
//
// # Overview
//
// This package contains:
//   - Batch descent: GD, GDLineSearch, BarzilaiBorwein, Nesterov,
//     ConjugateGradient, LBFGS, OWLQN and TrustRegion
//   - Stochastic descent: SGD, SGDLineSearch, SGDDecaying, AdaGrad,
//     RegularizedDualAveraging, RegularizedDualAveragingAdaGrad and
//     StochasticAverageGradient
//   - Recorder, to observe progress
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convex/dataset"
//	    "github.com/born-ml/convex/linalg"
//	    "github.com/born-ml/convex/objective"
//	    "github.com/born-ml/convex/optim"
//	)
//
//	func main() {
//	    ds, err := dataset.LoadLibSVM("train.txt")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    obj := objective.NewL2Logistic(ds.NumFeatures, ds.Features, ds.Labels, 1)
//
//	    res := optim.LBFGS(obj, linalg.NewVector(obj.Dim()), optim.BatchConfig{
//	        MaxEval: 500,
//	        Tol:     1e-4,
//	        Recorder: optim.RecorderFunc(func(it optim.Iteration) {
//	            fmt.Println(it.Iter, it.F)
//	        }),
//	    })
//	    fmt.Println(res)
//	}
//
// # Configuration
//
// Solvers take a config struct by value. Zero numeric fields take the
// documented defaults, so the zero config is always valid.
//
// # Termination
//
// Running out of budget is not an error. Every solver returns its last
// accepted iterate; Result.Status records why it stopped and
// Result.Converged reports whether a convergence test fired.
//
// # L1 Regularization
//
// OWLQN and the dual averaging methods produce exact zeros. OWLQN expects an
// objective returning the L1 pseudo-gradient, such as objective.NewL1Logistic.
// Dual averaging takes an RDAProblem naming both the smooth loss and its
// regularized form.
package optim
