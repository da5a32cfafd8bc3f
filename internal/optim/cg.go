package optim

import (
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// ConjugateGradient runs Fletcher-Reeves nonlinear conjugate gradient with
// Armijo backtracking along the search direction.
//
// The direction restarts at the gradient whenever it stops being a descent
// direction. Alpha defaults to 1.
func ConjugateGradient(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("ConjugateGradient", obj, x0)
	cfg = cfg.withDefaults(1, DefaultMemory)
	tr := tracker{name: "cg", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	d := g.Clone()
	status := optimize.NotTerminated

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		slope := g.Dot(d)
		if slope <= 0 {
			d = g.Clone()
			slope = gnorm * gnorm
		}

		st, used, ok := backtrack(obj.ValueGradient, x, f, d, slope, alpha, cfg.Gamma, cfg.MaxEval-evals)
		evals += used
		if !ok {
			status = lineSearchStatus(tr, evals, cfg.MaxEval)
			break
		}

		fOld, gOldNorm2 := f, gnorm*gnorm
		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})

		beta := gnorm * gnorm / gOldNorm2
		d = g.AddScaled(beta, d)

		alpha = st.alpha
		if !cfg.KeepAlpha {
			alpha = resetStep(fOld, f, g)
		}
	}

	if status == optimize.NotTerminated {
		status = gradientStatus(tr, gnorm, cfg.Tol, evals)
	}
	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: status})
}
