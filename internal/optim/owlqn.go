package optim

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// OWLQN runs orthant-wise limited-memory quasi-Newton for f(x) + λ‖x‖₁.
//
// obj must return the pseudo-gradient of the full L1-regularized objective, as
// the L1 losses in package objective do. Each iteration:
//   - builds the L-BFGS direction from the pseudo-gradient,
//   - zeroes direction components whose sign disagrees with it,
//   - fixes the orthant ξᵢ = sign(xᵢ), or sign(-gᵢ) where xᵢ = 0,
//   - backtracks on x - αd projected onto that orthant, accepting when
//     f_new <= f + γ g·(x_new - x).
//
// It stops when |f - f_new| < Tol, when ‖g‖ < Tol, or on the budget. Memory
// defaults to 100. Projection sets coordinates that would cross their orthant
// to exactly zero, which is where the sparsity of the result comes from.
func OWLQN(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("OWLQN", obj, x0)
	cfg = cfg.withDefaults(1, DefaultOWLQNMemory)
	tr := tracker{name: "owlqn", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	hist := linalg.NewHistory(cfg.Memory, len(x))
	status := optimize.NotTerminated

	for evals < cfg.MaxEval {
		if gnorm < cfg.Tol {
			status = optimize.GradientThreshold
			break
		}

		d := twoLoop(hist, g)
		restrictDirection(d, g)
		slope := g.Dot(d)
		if slope <= 0 {
			hist.Reset()
			d = g.Clone()
			slope = gnorm * gnorm
		}
		orthant := referenceOrthant(x, g)

		st, used, ok := owlBacktrack(obj, x, f, g, d, slope, orthant, alpha, cfg.Gamma, cfg.MaxEval-evals)
		evals += used
		if !ok {
			status = lineSearchStatus(tr, evals, cfg.MaxEval)
			break
		}

		s := st.x.Sub(x)
		y := st.g.Sub(g)
		if s.Dot(y) > 0 {
			hist.Push(s, y)
		}

		fOld := f
		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})

		if math.Abs(fOld-f) < cfg.Tol {
			status = optimize.FunctionConvergence
			break
		}
		if cfg.KeepAlpha {
			alpha = st.alpha
		} else {
			alpha = 1
		}
	}

	if status == optimize.NotTerminated {
		tr.budgetExhausted(evals)
		status = optimize.FunctionEvaluationLimit
	}
	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: status})
}

// restrictDirection zeroes the components of d whose sign differs from the
// pseudo-gradient g. The iterate moves along -d.
func restrictDirection(d, g linalg.Vector) {
	for i := range d {
		if d[i]*g[i] <= 0 {
			d[i] = 0
		}
	}
}

// referenceOrthant returns ξ with ξᵢ = sign(xᵢ), or sign(-gᵢ) where xᵢ = 0.
func referenceOrthant(x, g linalg.Vector) linalg.Vector {
	xi := make(linalg.Vector, len(x))
	for i := range x {
		if x[i] != 0 {
			xi[i] = linalg.Sign(x[i])
		} else {
			xi[i] = linalg.Sign(-g[i])
		}
	}
	return xi
}

// projectOrthant sets every coordinate of x whose sign differs from ξ to zero.
func projectOrthant(x, xi linalg.Vector) {
	for i := range x {
		if linalg.Sign(x[i]) != xi[i] {
			x[i] = 0
		}
	}
}

func owlBacktrack(obj objective.Objective, x linalg.Vector, f float64, g, d linalg.Vector, slope float64, orthant linalg.Vector, alpha, gamma float64, budget int) (st step, evals int, ok bool) {
	for evals < budget {
		xNew := x.AddScaled(-alpha, d)
		projectOrthant(xNew, orthant)
		fNew, gNew := obj.ValueGradient(xNew)
		evals++
		if fNew <= f+gamma*g.Dot(xNew.Sub(x)) && !math.IsNaN(fNew) {
			return step{x: xNew, f: fNew, g: gNew, alpha: alpha}, evals, true
		}
		alpha = shrinkStep(alpha, slope, f, fNew)
		if alpha == 0 {
			break
		}
	}
	return step{}, evals, false
}
