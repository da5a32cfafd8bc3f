package optim

import (
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// GD runs gradient descent with a fixed step:
//
//	x = x - α ∇f(x)
//
// until ‖∇f‖ < Tol or MaxEval evaluations. Alpha defaults to 0.1.
//
// Example:
//
//	res := optim.GD(obj, x0, optim.BatchConfig{Alpha: 0.1, MaxEval: 500, Tol: 1e-4})
func GD(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("GD", obj, x0)
	cfg = cfg.withDefaults(0.1, DefaultMemory)
	tr := tracker{name: "gd", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		x.AddScaledInPlace(-cfg.Alpha, g)
		f, g = obj.ValueGradient(x)
		evals++
		iter++
		gnorm = g.Norm(2)
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: cfg.Alpha})
	}

	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: gradientStatus(tr, gnorm, cfg.Tol, evals)})
}

// GDLineSearch runs gradient descent with an Armijo backtracking line search.
//
// Each iteration searches along -∇f starting from the current step. After an
// accepted step the next search starts from min(1, 2(f_old-f_new)/‖g_new‖²)
// unless KeepAlpha is set. Alpha defaults to 1.
func GDLineSearch(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("GDLineSearch", obj, x0)
	cfg = cfg.withDefaults(1, DefaultMemory)
	tr := tracker{name: "gd-linesearch", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	status := optimize.NotTerminated

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		st, used, ok := backtrack(obj.ValueGradient, x, f, g, gnorm*gnorm, alpha, cfg.Gamma, cfg.MaxEval-evals)
		evals += used
		if !ok {
			status = lineSearchStatus(tr, evals, cfg.MaxEval)
			break
		}
		fOld := f
		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})

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

// BarzilaiBorwein runs gradient descent whose next trial step is the
// Barzilai-Borwein estimate
//
//	α ← -α (g·Δg)/(Δg·Δg),  Δg = g_new - g
//
// with the same Armijo acceptance as GDLineSearch. A degenerate estimate
// (Δg = 0 or non-positive) keeps the accepted step.
func BarzilaiBorwein(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("BarzilaiBorwein", obj, x0)
	cfg = cfg.withDefaults(1, DefaultMemory)
	tr := tracker{name: "barzilai-borwein", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter := 1, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	status := optimize.NotTerminated

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		st, used, ok := backtrack(obj.ValueGradient, x, f, g, gnorm*gnorm, alpha, cfg.Gamma, cfg.MaxEval-evals)
		evals += used
		if !ok {
			status = lineSearchStatus(tr, evals, cfg.MaxEval)
			break
		}
		dg := st.g.Sub(g)
		alpha = st.alpha
		if den := dg.SquaredNorm(); den > 0 {
			if bb := -st.alpha * g.Dot(dg) / den; bb > 0 {
				alpha = bb
			}
		}

		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})
	}

	if status == optimize.NotTerminated {
		status = gradientStatus(tr, gnorm, cfg.Tol, evals)
	}
	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: status})
}

// Nesterov runs Nesterov's accelerated gradient method with backtracking.
//
// Each iteration extrapolates y = x + (k-1)/(k+2) (x - x_prev) and takes an
// Armijo-accepted gradient step from y. If the new point is worse than x the
// momentum is restarted, so accepted iterates never increase f. Alpha
// defaults to 1 and is reset after each acceptance unless KeepAlpha is set.
func Nesterov(obj objective.Objective, x0 linalg.Vector, cfg BatchConfig) Result {
	mustStart("Nesterov", obj, x0)
	cfg = cfg.withDefaults(1, DefaultMemory)
	tr := tracker{name: "nesterov", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	x := x0.Clone()
	xPrev := x.Clone()
	f, g := obj.ValueGradient(x)
	evals, iter, k := 1, 0, 0
	gnorm := g.Norm(2)
	alpha := initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
	status := optimize.NotTerminated

	for gnorm >= cfg.Tol && evals < cfg.MaxEval {
		k++
		y, fy, gy := x, f, g
		if k > 1 {
			beta := float64(k-1) / float64(k+2)
			y = x.AddScaled(beta, x.Sub(xPrev))
			fy, gy = obj.ValueGradient(y)
			evals++
			if evals >= cfg.MaxEval {
				status = lineSearchStatus(tr, evals, cfg.MaxEval)
				break
			}
		}

		gyNorm2 := gy.SquaredNorm()
		st, used, ok := backtrack(obj.ValueGradient, y, fy, gy, gyNorm2, alpha, cfg.Gamma, cfg.MaxEval-evals)
		evals += used
		if !ok {
			if k > 1 {
				// Retry from x without momentum.
				k = 0
				xPrev = x.Clone()
				continue
			}
			status = lineSearchStatus(tr, evals, cfg.MaxEval)
			break
		}
		if st.f > f {
			k = 0
			xPrev = x.Clone()
			continue
		}

		fOld := fy
		xPrev = x
		x, f, g = st.x, st.f, st.g
		gnorm = g.Norm(2)
		iter++
		tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: st.alpha})

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

// gradientStatus classifies a run that left its loop normally.
func gradientStatus(tr tracker, gnorm, tol float64, evals int) optimize.Status {
	if gnorm < tol {
		return optimize.GradientThreshold
	}
	tr.budgetExhausted(evals)
	return optimize.FunctionEvaluationLimit
}

// lineSearchStatus classifies a run whose line search gave up.
func lineSearchStatus(tr tracker, evals, maxEval int) optimize.Status {
	if evals >= maxEval {
		tr.budgetExhausted(evals)
		return optimize.FunctionEvaluationLimit
	}
	tr.lineSearchFailed(evals)
	return optimize.Failure
}
