// Package optim implements iterative minimization algorithms for the
// objectives in package objective.
//
// This package provides:
//   - Batch descent: GD, GDLineSearch, BarzilaiBorwein, Nesterov,
//     ConjugateGradient, LBFGS, OWLQN and TrustRegion (TRON)
//   - Stochastic descent: SGD, SGDLineSearch, SGDDecaying, AdaGrad,
//     RegularizedDualAveraging, RegularizedDualAveragingAdaGrad and
//     StochasticAverageGradient
//
// Every solver is a plain function taking an objective, a start vector and a
// config struct, and returning a Result. The start vector is never modified
// and the returned X is a fresh vector. Budget exhaustion is not an error: the
// solver logs a warning and returns its last accepted iterate with a Status
// that records why it stopped.
//
// Example usage:
//
//	obj := objective.NewL2Logistic(ds.NumFeatures, ds.Features, ds.Labels, 1)
//	res := optim.LBFGS(obj, linalg.NewVector(obj.Dim()), optim.BatchConfig{
//	    MaxEval: 500,
//	    Tol:     1e-4,
//	})
//	fmt.Println(res.F, res.Status)
package optim

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// Result is the outcome of a solver run.
type Result struct {
	X           linalg.Vector   // Last accepted iterate
	F           float64         // Objective value at X
	GradNorm    float64         // Convergence measure at X (gradient norm for most solvers)
	Evaluations int             // Objective evaluations spent
	Iterations  int             // Accepted iterations (epochs for stochastic solvers)
	Status      optimize.Status // Why the solver stopped
}

// Converged reports whether the run stopped on a convergence test rather than
// a budget or a numerical failure.
func (r Result) Converged() bool {
	switch r.Status {
	case optimize.GradientThreshold, optimize.FunctionConvergence, optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("f=%.6g |g|=%.3g iters=%d evals=%d status=%v", r.F, r.GradNorm, r.Iterations, r.Evaluations, r.Status)
}

// Iteration is the per-iteration progress report handed to a Recorder.
type Iteration struct {
	Iter     int     // Accepted iteration (or epoch) number, starting at 1
	Evals    int     // Evaluations spent so far
	F        float64 // Objective value at the accepted iterate
	GradNorm float64 // Convergence measure at the accepted iterate
	Step     float64 // Step length used (α, trust-region radius, ...)
}

// Recorder receives progress reports. It is called once per accepted
// iteration of a batch solver and once per epoch of a stochastic solver.
type Recorder interface {
	Record(it Iteration)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(it Iteration)

// Record implements Recorder.
func (f RecorderFunc) Record(it Iteration) { f(it) }

// tracker bundles the progress plumbing every solver needs.
type tracker struct {
	name      string
	verbosity int
	recorder  Recorder
}

func (t tracker) record(it Iteration) {
	if t.verbosity > 0 {
		klog.Infof("%s: iter=%d evals=%d f=%.10g |g|=%.4g step=%.4g", t.name, it.Iter, it.Evals, it.F, it.GradNorm, it.Step)
	}
	if t.recorder != nil {
		t.recorder.Record(it)
	}
}

func (t tracker) budgetExhausted(evals int) {
	klog.Warningf("%s: evaluation budget exhausted after %d evaluations, returning last accepted iterate", t.name, evals)
}

func (t tracker) lineSearchFailed(evals int) {
	klog.Warningf("%s: line search could not find a decrease after %d evaluations, returning last accepted iterate", t.name, evals)
}

func (t tracker) finish(res Result) Result {
	if t.verbosity > 0 {
		klog.Infof("%s: done: %v", t.name, res)
	}
	return res
}

// mustStart validates the start vector against the objective.
func mustStart(name string, obj objective.Objective, x0 linalg.Vector) {
	if len(x0) != obj.Dim() {
		panic(fmt.Sprintf("optim.%s: start vector has length %d, objective dimension is %d", name, len(x0), obj.Dim()))
	}
}
