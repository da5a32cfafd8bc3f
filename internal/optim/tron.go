package optim

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// Trust-region update parameters.
const (
	tronEta0   = 1e-4
	tronEta1   = 0.25
	tronEta2   = 0.75
	tronSigma1 = 0.25
	tronSigma2 = 0.5
	tronSigma3 = 4.0
)

// TrustRegion runs the trust-region Newton method (TRON) with a truncated
// conjugate-gradient inner solver.
//
// The objective must provide Hessian-vector products through Linearize and
// HessianVector. Convergence is relative: the run stops when
// ‖∇f(x)‖ <= Tol·‖∇f(0)‖. It also stops, with a warning, when the predicted
// reduction is not positive, when both reductions are negligible relative to
// |f|, or when f drops below -1e32.
func TrustRegion(obj objective.Objective, x0 linalg.Vector, cfg TrustRegionConfig) Result {
	mustStart("TrustRegion", obj, x0)
	cfg = cfg.withDefaults()
	tr := tracker{name: "tron", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	gnorm0 := objective.Gradient(obj, linalg.NewVector(obj.Dim())).Norm(2)

	x := x0.Clone()
	f, g, lin := obj.Linearize(x)
	evals := 2
	gnorm := g.Norm(2)
	delta := gnorm
	iter := 0
	status := optimize.NotTerminated

	if gnorm <= cfg.Tol*gnorm0 {
		status = optimize.GradientThreshold
	}

	for status == optimize.NotTerminated && evals < cfg.MaxEval {
		s, r, cgIter, boundary := trcg(obj, lin, g, delta, cfg.CGTol)

		xNew := x.Add(s)
		gs := g.Dot(s)
		prered := -0.5 * (gs - s.Dot(r))
		fNew := obj.Value(xNew)
		evals++
		actred := f - fNew

		snorm := s.Norm(2)
		if iter == 0 {
			delta = math.Min(delta, snorm)
		}

		var alpha float64
		if fNew-f-gs <= 0 {
			alpha = tronSigma3
		} else {
			alpha = math.Max(tronSigma1, -0.5*(gs/(fNew-f-gs)))
		}

		switch {
		case actred < tronEta0*prered:
			delta = math.Min(math.Max(alpha, tronSigma1)*snorm, tronSigma2*delta)
		case actred < tronEta1*prered:
			delta = math.Max(tronSigma1*delta, math.Min(alpha*snorm, tronSigma2*delta))
		case actred < tronEta2*prered:
			delta = math.Max(tronSigma1*delta, math.Min(alpha*snorm, tronSigma3*delta))
		case boundary:
			delta = tronSigma3 * delta
		default:
			delta = math.Max(delta, math.Min(alpha*snorm, tronSigma3*delta))
		}

		if cfg.Verbosity > 1 {
			klog.Infof("tron: act=%.3e pre=%.3e delta=%.3e f=%.6g |g|=%.3e cg=%d", actred, prered, delta, f, gnorm, cgIter)
		}

		if actred > tronEta0*prered {
			f, g, lin = obj.Linearize(xNew)
			evals++
			x = xNew
			gnorm = g.Norm(2)
			iter++
			tr.record(Iteration{Iter: iter, Evals: evals, F: f, GradNorm: gnorm, Step: delta})
			if gnorm <= cfg.Tol*gnorm0 {
				status = optimize.GradientThreshold
				break
			}
		}

		switch {
		case f < -1e32:
			klog.Warning("tron: f < -1.0e+32")
			status = optimize.FunctionNegativeInfinity
		case prered <= 0:
			klog.Warning("tron: predicted reduction <= 0")
			status = optimize.Failure
		case math.Abs(actred) <= 1e-12*math.Abs(f) && math.Abs(prered) <= 1e-12*math.Abs(f):
			klog.Warning("tron: actual and predicted reductions too small")
			status = optimize.FunctionConvergence
		}
	}

	if status == optimize.NotTerminated {
		tr.budgetExhausted(evals)
		status = optimize.FunctionEvaluationLimit
	}
	return tr.finish(Result{X: x, F: f, GradNorm: gnorm, Evaluations: evals, Iterations: iter, Status: status})
}

// trcg approximately solves H s = -g inside the ball ‖s‖ <= delta by
// conjugate gradients. It returns the step, the residual r = -g - H s, the
// number of CG iterations and whether the step was cut at the boundary.
func trcg(obj objective.Objective, lin objective.Linearization, g linalg.Vector, delta, cgTol float64) (s, r linalg.Vector, iters int, boundary bool) {
	n := len(g)
	s = linalg.NewVector(n)
	r = g.Scale(-1)
	d := r.Clone()

	tol := cgTol * g.Norm(2)
	rTr := r.Dot(r)

	for iters < n+1 {
		if math.Sqrt(rTr) <= tol {
			break
		}
		iters++
		hd := obj.HessianVector(lin, d)

		dHd := d.Dot(hd)
		if dHd <= 0 {
			break
		}
		alpha := rTr / dHd
		s.AddScaledInPlace(alpha, d)

		if s.Norm(2) > delta {
			boundary = true
			s.AddScaledInPlace(-alpha, d)

			std := s.Dot(d)
			sts := s.Dot(s)
			dtd := d.Dot(d)
			dsq := delta * delta
			rad := math.Sqrt(std*std + dtd*(dsq-sts))
			if std >= 0 {
				alpha = (dsq - sts) / (std + rad)
			} else {
				alpha = (rad - std) / dtd
			}
			s.AddScaledInPlace(alpha, d)
			r.AddScaledInPlace(-alpha, hd)
			break
		}

		r.AddScaledInPlace(-alpha, hd)
		rNew := r.Dot(r)
		beta := rNew / rTr
		d.ScaleInPlace(beta)
		d.AddScaledInPlace(1, r)
		rTr = rNew
	}
	return s, r, iters, boundary
}
