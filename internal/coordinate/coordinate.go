// Package coordinate implements specialized coordinate-descent solvers for
// linear models over sparse data:
//   - L1LogisticRegression: newGLMNET on the primal of ℓ1-regularized
//     logistic regression
//   - SVCDual: dual coordinate descent for ℓ2-regularized SVM classification
//   - SVRDual: dual coordinate descent for ℓ2-regularized SVM regression
//
// All three shrink the set of coordinates they visit with an ActiveSet and
// reactivate it before declaring convergence. Labels for the classification
// solvers must be ±1.
package coordinate

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/optim"
)

// Default solver settings.
const (
	DefaultDualEps       = 0.1
	DefaultDualMaxIter   = 1000
	DefaultL1Eps         = 0.01
	DefaultNewtonMaxIter = 100
	DefaultInnerMaxIter  = 1000
)

// Loss selects the loss of the dual solvers.
//
// For SVCDual, Hinge is max(0, 1-y w·x) and SquaredHinge its square. For
// SVRDual, Hinge is the ε-insensitive loss max(0, |y-w·x|-p) and
// SquaredHinge its square.
type Loss int

// Supported losses.
const (
	Hinge Loss = iota
	SquaredHinge
)

// String implements fmt.Stringer.
func (l Loss) String() string {
	switch l {
	case Hinge:
		return "hinge"
	case SquaredHinge:
		return "squared-hinge"
	}
	return fmt.Sprintf("Loss(%d)", int(l))
}

// Config holds the settings shared by the coordinate-descent solvers.
// Zero fields take the solver's defaults.
type Config struct {
	Eps          float64 // Stopping tolerance
	MaxIter      int     // Outer iterations: sweeps for the dual solvers, Newton steps for L1LogisticRegression
	MaxInnerIter int     // Coordinate sweeps per Newton step (L1LogisticRegression only)
	Seed         int64   // Permutation seed; 0 uses the current time
	Verbosity    int     // >0 logs one line per outer iteration

	// Recorder, when set, receives one report per outer iteration with the
	// primal objective value as F and the violation measure as GradNorm.
	Recorder optim.Recorder

	// Sweep, when set, is called after every sweep of a dual solver with the
	// sweep number and the current dual variables. The vector is live and
	// must not be retained or modified.
	Sweep func(iter int, dual linalg.Vector)
}

func (c Config) withDefaults(eps float64, maxIter int) Config {
	if c.Eps <= 0 {
		c.Eps = eps
	}
	if c.MaxIter <= 0 {
		c.MaxIter = maxIter
	}
	if c.MaxInnerIter <= 0 {
		c.MaxInnerIter = DefaultInnerMaxIter
	}
	return c
}

// Result is the outcome of a coordinate-descent run.
//
// Primal is the objective in the units of package objective (loss sum plus
// penalty with λ = 1/C). Dual is the dual objective scaled to the same units,
// so Primal - Dual is the duality gap; it is zero for L1LogisticRegression.
type Result struct {
	W          linalg.Vector   // Primal weights
	Alpha      linalg.Vector   // Dual variables (nil for L1LogisticRegression)
	Primal     float64         // Primal objective at W
	Dual       float64         // Dual objective at Alpha
	Iterations int             // Outer iterations run
	Status     optimize.Status // Why the solver stopped
}

// Gap returns the duality gap Primal - Dual.
func (r Result) Gap() float64 {
	return r.Primal - r.Dual
}

// Converged reports whether the solver met its stopping tolerance.
func (r Result) Converged() bool {
	return r.Status == optimize.GradientThreshold
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func mustProblem(name string, ds *dataset.Dataset, lambda float64, binary bool) {
	if ds == nil || ds.Len() == 0 {
		panic(fmt.Sprintf("coordinate.%s: empty dataset", name))
	}
	if len(ds.Labels) != ds.Len() {
		panic(fmt.Sprintf("coordinate.%s: %d labels for %d examples", name, len(ds.Labels), ds.Len()))
	}
	if !(lambda > 0) || math.IsInf(lambda, 1) {
		panic(fmt.Sprintf("coordinate.%s: regularization must be positive and finite, got %g", name, lambda))
	}
	if !binary {
		return
	}
	for i, y := range ds.Labels {
		if y != 1 && y != -1 {
			panic(fmt.Sprintf("coordinate.%s: label %d is %g, want ±1", name, i, y))
		}
	}
}

// progress reports one outer iteration to the log and the recorder. primal
// and extra are only evaluated when someone listens.
func progress(name string, cfg Config, iter int, measure float64, primal func() float64, extra func() string) {
	if cfg.Verbosity <= 0 && cfg.Recorder == nil {
		return
	}
	f := primal()
	if cfg.Verbosity > 0 {
		klog.Infof("%s: iter=%d f=%.10g violation=%.3g %s", name, iter, f, measure, extra())
	}
	if cfg.Recorder != nil {
		cfg.Recorder.Record(optim.Iteration{Iter: iter, Evals: iter, F: f, GradNorm: measure})
	}
}

func finish(name string, cfg Config, res Result) Result {
	if res.Status == optimize.NotTerminated {
		klog.Warningf("%s: reached the maximum of %d iterations", name, cfg.MaxIter)
		res.Status = optimize.IterationLimit
	}
	if cfg.Verbosity > 0 {
		klog.Infof("%s: finished after %d iterations, primal=%.10g dual=%.10g status=%v",
			name, res.Iterations, res.Primal, res.Dual, res.Status)
	}
	return res
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
