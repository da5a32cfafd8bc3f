package optim

import (
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// LBFGS runs limited-memory BFGS with Armijo backtracking.
//
// The last Memory correction pairs (s, y) are kept in a linalg.History; pairs
// with s·y <= 0 are skipped so the implicit inverse Hessian stays positive
// definite. The first step starts at 1/‖g₀‖ unless UseInputAlpha is set; later
// steps start at 1 unless KeepAlpha is set.
func LBFGS(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("LBFGS", obj, x0)
	cfg = cfg.withDefaults(1, DefaultMemory)
	tr := tracker{name: "lbfgs", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	hist := linalg.NewHistory(cfg.Memory, len(x))
	status := optimize.NotTerminated

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		d := twoLoop(hist, g)
		slope := g.Dot(d)
		if slope <= 0 {
			hist.Reset()
			d = g.Clone()
			slope = gnorm * gnorm
		}

		st, used, ok := backtrack(obj.ValueGradient, x, f, d, slope, alpha, cfg.Gamma, cfg.MaxEval-evals)
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

		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})

		if cfg.KeepAlpha {
			alpha = st.alpha
		} else {
			alpha = 1
		}
	}

	if status == optimize.NotTerminated {
		status = gradientStatus(tr, gnorm, cfg.Tol, evals)
	}
	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: status})
}

// twoLoop applies the L-BFGS inverse-Hessian approximation to g. The result is
// the search direction d (the iterate moves along -d). With an empty history
// it returns a copy of g.
func twoLoop(hist *linalg.History, g linalg.Vector) linalg.Vector {
	q := g.Clone()
	k := hist.Len()
	if k == 0 {
		return q
	}

	a := make([]float64, k)
	rho := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		s, y := hist.S(i), hist.Y(i)
		rho[i] = 1 / y.Dot(s)
		a[i] = rho[i] * s.Dot(q)
		q.AddScaledInPlace(-a[i], y)
	}

	s, y := hist.Newest()
	q.ScaleInPlace(s.Dot(y) / y.Dot(y))

	for i := 0; i < k; i++ {
		s, y := hist.S(i), hist.Y(i)
		b := rho[i] * y.Dot(q)
		q.AddScaledInPlace(a[i]-b, s)
	}
	return q
}
