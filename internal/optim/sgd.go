package optim

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// maxBatchBacktracks bounds the line search SGDLineSearch runs per minibatch.
const maxBatchBacktracks = 50

// epochFunc runs one epoch on x in place and returns the loss of the last
// minibatch it evaluated and the evaluations it spent.
type epochFunc func(x linalg.Vector) (fLast float64, evals int)

// runEpochs drives the epoch loop shared by the stochastic solvers. report is
// the objective used for the exact convergence test and the final value.
func runEpochs(tr tracker, report objective.Objective, x linalg.Vector, cfg StochasticConfig, epoch epochFunc) Result {
	fPrev := math.Inf(1)
	evals, iter := 0, 0
	measure := math.Inf(1)
	status := optimize.NotTerminated

	last := x.Clone()
	for iter < cfg.MaxEpochs {
		last.CopyFrom(x)
		fLast, used := epoch(x)
		evals += used
		iter++

		if !x.IsFinite() {
			klog.Warningf("%s: iterate diverged in epoch %d, returning the last finite iterate", tr.name, iter)
			x.CopyFrom(last)
			status = optimize.Failure
			break
		}

		if cfg.Verbosity >= 2 {
			measure = objective.Gradient(report, x).Norm(2)
			evals++
		} else {
			measure = math.Abs(fPrev - fLast)
		}
		fPrev = fLast
		tr.record(Iteration{Iter: iter, Evals: evals, F: fLast, GradNorm: measure, Step: cfg.Alpha})

		if measure < cfg.Tol {
			if cfg.Verbosity >= 2 {
				status = optimize.GradientThreshold
			} else {
				status = optimize.FunctionConvergence
			}
			break
		}
	}

	if status == optimize.NotTerminated {
		klog.Warningf("%s: epoch budget exhausted after %d epochs, returning last iterate", tr.name, iter)
		status = optimize.IterationLimit
	}
	f := report.Value(x)
	evals++
	return tr.finish(Result{X: x, F: f, GradNorm: measure, Evaluations: evals, Iterations: iter, Status: status})
}

func logBatch(tr tracker, verbosity, t int, f float64) {
	if verbosity > 2 {
		klog.Infof("%s: minibatch=%d f=%.10g", tr.name, t, f)
	}
}

// SGD runs minibatch stochastic gradient descent with a fixed step:
//
//	x = x - α ∇f_B(x)
//
// where ∇f_B is the gradient over minibatch B. Batches are reshuffled every
// epoch.
//
// Example:
//
//	res := optim.SGD(obj, x0, optim.StochasticConfig{
//	    MiniBatchSize: 32,
//	    Alpha:         0.01,
//	    MaxEpochs:     100,
//	})
func SGD(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	mustStart("SGD", obj, x0)
	cfg = cfg.withDefaults(obj.Len())
	tr := tracker{name: "sgd", verbosity: cfg.Verbosity, recorder: cfg.Recorder}
	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	t := 0

	return runEpochs(tr, obj, x0.Clone(), cfg, func(x linalg.Vector) (float64, int) {
		mb.Shuffle()
		var f float64
		for _, batch := range mb.Batches() {
			var g linalg.Vector
			f, g = obj.BatchValueGradient(x, batch)
			x.AddScaledInPlace(-cfg.Alpha, g)
			t++
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, mb.Len()
	})
}

// SGDLineSearch runs minibatch gradient descent where each step is chosen by
// an Armijo backtracking search on the current minibatch's loss. The step
// carries over between minibatches, reset as in GDLineSearch unless
// KeepAlpha is set.
func SGDLineSearch(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	mustStart("SGDLineSearch", obj, x0)
	cfg = cfg.withDefaults(obj.Len())
	tr := tracker{name: "sgd-linesearch", verbosity: cfg.Verbosity, recorder: cfg.Recorder}
	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	t := 0
	alpha := math.NaN()

	return runEpochs(tr, obj, x0.Clone(), cfg, func(x linalg.Vector) (float64, int) {
		mb.Shuffle()
		var f float64
		evals := 0
		for _, batch := range mb.Batches() {
			eval := func(z linalg.Vector) (float64, linalg.Vector) {
				return obj.BatchValueGradient(z, batch)
			}
			var g linalg.Vector
			f, g = eval(x)
			evals++
			if math.IsNaN(alpha) {
				alpha = initialStep(cfg.Alpha, cfg.UseInputAlpha, g)
			}
			gg := g.SquaredNorm()
			t++
			if gg == 0 {
				continue
			}
			st, used, ok := backtrack(eval, x, f, g, gg, alpha, cfg.Gamma, maxBatchBacktracks)
			evals += used
			if !ok {
				continue
			}
			x.CopyFrom(st.x)
			alpha = st.alpha
			if !cfg.KeepAlpha {
				alpha = resetStep(f, st.f, st.g)
			}
			f = st.f
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, evals
	})
}

// SGDDecaying runs minibatch SGD with the decaying rate α/(1 + α t), where t
// counts minibatches across epochs.
func SGDDecaying(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	mustStart("SGDDecaying", obj, x0)
	cfg = cfg.withDefaults(obj.Len())
	tr := tracker{name: "sgd-decaying", verbosity: cfg.Verbosity, recorder: cfg.Recorder}
	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	t := 0

	return runEpochs(tr, obj, x0.Clone(), cfg, func(x linalg.Vector) (float64, int) {
		mb.Shuffle()
		var f float64
		for _, batch := range mb.Batches() {
			var g linalg.Vector
			f, g = obj.BatchValueGradient(x, batch)
			rate := cfg.Alpha / (1 + cfg.Alpha*float64(t))
			x.AddScaledInPlace(-rate, g)
			t++
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, mb.Len()
	})
}

// AdaGrad runs minibatch SGD with per-coordinate steps α/√Gᵢ, where Gᵢ
// accumulates squared gradient components starting from 1e-5.
func AdaGrad(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	mustStart("AdaGrad", obj, x0)
	cfg = cfg.withDefaults(obj.Len())
	tr := tracker{name: "adagrad", verbosity: cfg.Verbosity, recorder: cfg.Recorder}
	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	sumSq := linalg.Fill(len(x0), adagradInitialScale)
	t := 0

	return runEpochs(tr, obj, x0.Clone(), cfg, func(x linalg.Vector) (float64, int) {
		mb.Shuffle()
		var f float64
		for _, batch := range mb.Batches() {
			var g linalg.Vector
			f, g = obj.BatchValueGradient(x, batch)
			for i, gi := range g {
				sumSq[i] += gi * gi
				x[i] -= cfg.Alpha * gi / math.Sqrt(sumSq[i])
			}
			t++
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, mb.Len()
	})
}
