package optim

import (
	"math"

	"github.com/born-ml/convex/internal/linalg"
)

// evalFunc returns the objective value and gradient at x. Batch solvers pass
// the full evaluation, SGDLineSearch a minibatch closure.
type evalFunc func(x linalg.Vector) (float64, linalg.Vector)

// step is an accepted line-search point.
type step struct {
	x     linalg.Vector
	f     float64
	g     linalg.Vector
	alpha float64
}

// backtrack runs an Armijo backtracking search along -d from x.
//
// slope is g·d and must be positive. A candidate x - αd is accepted when
//
//	f(x - αd) <= f - γ α slope
//
// otherwise α is replaced by the minimizer of the quadratic interpolating f,
// the slope and the rejected value:
//
//	α ← α² slope / (2 (f_new + α slope - f))
//
// falling back to α/2 when that value is not finite or does not shrink α.
// At most budget evaluations are spent; ok is false if none was accepted.
func backtrack(eval evalFunc, x linalg.Vector, f float64, d linalg.Vector, slope, alpha, gamma float64, budget int) (st step, evals int, ok bool) {
	for evals < budget {
		xNew := x.AddScaled(-alpha, d)
		fNew, gNew := eval(xNew)
		evals++
		if fNew <= f-gamma*alpha*slope && !math.IsNaN(fNew) {
			return step{x: xNew, f: fNew, g: gNew, alpha: alpha}, evals, true
		}
		alpha = shrinkStep(alpha, slope, f, fNew)
		if alpha == 0 {
			break
		}
	}
	return step{}, evals, false
}

// shrinkStep returns the interpolated step after rejecting alpha.
func shrinkStep(alpha, slope, f, fNew float64) float64 {
	next := alpha * alpha * slope / (2 * (fNew + alpha*slope - f))
	if math.IsNaN(next) || math.IsInf(next, 0) || next <= 0 || next >= alpha {
		next = alpha / 2
	}
	if next < math.SmallestNonzeroFloat64*1e10 {
		return 0
	}
	return next
}

// resetStep is the step used after an accepted search when the config does not
// keep alpha: min(1, 2(f_old - f_new)/‖g_new‖²).
func resetStep(fOld, fNew float64, gNew linalg.Vector) float64 {
	a := 2 * (fOld - fNew) / gNew.SquaredNorm()
	if math.IsNaN(a) || a <= 0 {
		return 1
	}
	return math.Min(1, a)
}

// initialStep picks the first line-search step: the configured alpha, or
// 1/‖g‖ when the config does not ask for the input alpha.
func initialStep(cfgAlpha float64, useInput bool, g linalg.Vector) float64 {
	if useInput {
		return cfgAlpha
	}
	n := g.Norm(2)
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return cfgAlpha
	}
	return 1 / n
}
