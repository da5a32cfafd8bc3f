// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
	"github.com/born-ml/convex/internal/optim"
)

// Solver defaults applied to zero-valued config fields.
const (
	DefaultMaxEval     = optim.DefaultMaxEval
	DefaultTol         = optim.DefaultTol
	DefaultGamma       = optim.DefaultGamma
	DefaultMemory      = optim.DefaultMemory
	DefaultOWLQNMemory = optim.DefaultOWLQNMemory
	DefaultCGTol       = optim.DefaultCGTol
	DefaultStochAlpha  = optim.DefaultStochAlpha
	DefaultRDADecay    = optim.DefaultRDADecay
	DefaultMiniBatch   = optim.DefaultMiniBatch
)

// Result is the outcome of a solver run.
type Result = optim.Result

// Iteration is a per-iteration progress report.
type Iteration = optim.Iteration

// Recorder receives progress reports.
type Recorder = optim.Recorder

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc = optim.RecorderFunc

// BatchConfig configures the full-gradient solvers.
type BatchConfig = optim.BatchConfig

// TrustRegionConfig configures TrustRegion.
type TrustRegionConfig = optim.TrustRegionConfig

// StochasticConfig configures the minibatch solvers.
type StochasticConfig = optim.StochasticConfig

// RDAProblem pairs the smooth loss and its L1-regularized form for dual
// averaging.
type RDAProblem = optim.RDAProblem

// Minibatches partitions sample indices into shuffled minibatches.
type Minibatches = optim.Minibatches

// NewMinibatches partitions [0, n) into batches of the given size.
func NewMinibatches(n, size int, seed int64) *Minibatches {
	return optim.NewMinibatches(n, size, seed)
}

// Batch descent

// GD runs gradient descent with a fixed step.
func GD(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.GD(obj, x0, cfg)
}

// GDLineSearch runs gradient descent with an Armijo backtracking search.
//
// Example:
//
//	res := optim.GDLineSearch(obj, linalg.NewVector(obj.Dim()), optim.BatchConfig{
//	    MaxEval: 500,
//	    Tol:     1e-4,
//	})
func GDLineSearch(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.GDLineSearch(obj, x0, cfg)
}

// BarzilaiBorwein runs gradient descent with Barzilai-Borwein steps.
func BarzilaiBorwein(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.BarzilaiBorwein(obj, x0, cfg)
}

// Nesterov runs accelerated gradient descent with backtracking.
func Nesterov(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.Nesterov(obj, x0, cfg)
}

// ConjugateGradient runs Fletcher-Reeves nonlinear conjugate gradient.
func ConjugateGradient(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.ConjugateGradient(obj, x0, cfg)
}

// LBFGS runs limited-memory BFGS.
func LBFGS(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.LBFGS(obj, x0, cfg)
}

// OWLQN runs orthant-wise L-BFGS on an L1-regularized objective.
func OWLQN(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	return optim.OWLQN(obj, x0, cfg)
}

// TrustRegion runs trust-region Newton with truncated conjugate gradient.
func TrustRegion(obj objective.Objective, x0 linalg.Vector, cfg TrustRegionConfig) Result {
	return optim.TrustRegion(obj, x0, cfg)
}

// Stochastic descent

// SGD runs minibatch gradient descent with a fixed step.
//
// Example:
//
//	res := optim.SGD(obj, x0, optim.StochasticConfig{
//	    MiniBatchSize: 32,
//	    Alpha:         0.01,
//	})
func SGD(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.SGD(obj, x0, cfg)
}

// SGDLineSearch runs minibatch descent with a per-batch line search.
func SGDLineSearch(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.SGDLineSearch(obj, x0, cfg)
}

// SGDDecaying runs minibatch descent with the step α/(1+αt).
func SGDDecaying(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.SGDDecaying(obj, x0, cfg)
}

// AdaGrad runs minibatch descent with per-coordinate adaptive steps.
func AdaGrad(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.AdaGrad(obj, x0, cfg)
}

// RegularizedDualAveraging runs ℓ1-regularized dual averaging.
func RegularizedDualAveraging(p RDAProblem, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.RegularizedDualAveraging(p, x0, cfg)
}

// RegularizedDualAveragingAdaGrad runs dual averaging with AdaGrad scaling.
func RegularizedDualAveragingAdaGrad(p RDAProblem, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.RegularizedDualAveragingAdaGrad(p, x0, cfg)
}

// StochasticAverageGradient runs SAG.
func StochasticAverageGradient(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	return optim.StochasticAverageGradient(obj, x0, cfg)
}
