package coordinate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// SVCDual trains an ℓ2-regularized linear SVM classifier by coordinate
// descent on the dual problem
//
//	min_α ½ αᵀQ̄α - Σ αᵢ   s.t. 0 <= αᵢ <= U
//
// with Q̄ = Q + D·I, Qᵢⱼ = yᵢyⱼ xᵢ·xⱼ and C = 1/lambda. The hinge loss uses
// U = C and D = 0; the squared hinge uses U = ∞ and D = 0.5/C. The primal
// weights w = Σ αᵢyᵢxᵢ are maintained incrementally.
//
// Coordinates whose projected gradient is far outside the bounds of the last
// sweep are shrunk. The solver stops when the projected gradients of a sweep
// over the full set lie within Eps of each other.
func SVCDual(ds *dataset.Dataset, loss Loss, lambda float64, cfg Config) Result {
	const name = "svc-dual"
	mustProblem("SVCDual", ds, lambda, true)
	cfg = cfg.withDefaults(DefaultDualEps, DefaultDualMaxIter)

	n, m := ds.Len(), ds.NumFeatures
	c := 1 / lambda
	var diag, upper float64
	var primal *objective.Linear
	switch loss {
	case Hinge:
		diag, upper = 0, c
		primal = objective.NewL2HingeSVM(m, ds.Features, ds.Labels, lambda)
	case SquaredHinge:
		diag, upper = 0.5/c, math.Inf(1)
		primal = objective.NewL2SmoothSVM(m, ds.Features, ds.Labels, lambda)
	default:
		panic(fmt.Sprintf("coordinate.SVCDual: unsupported loss %v", loss))
	}

	w := linalg.NewVector(m)
	alpha := linalg.NewVector(n)
	qd := make([]float64, n)
	for i, f := range ds.Features {
		qd[i] = diag + f.SquaredNorm()
	}
	dual := func() float64 {
		v := 0.5 * w.SquaredNorm()
		for _, a := range alpha {
			v += a * (0.5*diag*a - 1)
		}
		return -lambda * v
	}

	as := NewActiveSet(n)
	rng := newRand(cfg.Seed)
	pgMaxOld, pgMinOld := math.Inf(1), math.Inf(-1)
	res := Result{Status: optimize.NotTerminated}

	for res.Iterations < cfg.MaxIter {
		pgMax, pgMin := math.Inf(-1), math.Inf(1)
		as.Shuffle(rng)

		for s := 0; s < as.Len(); {
			i := as.At(s)
			f, y := ds.Features[i], ds.Labels[i]
			g := y*f.Dot(w) - 1 + diag*alpha[i]

			var pg float64
			switch {
			case alpha[i] == 0:
				if g > pgMaxOld {
					as.Shrink(s)
					continue
				}
				if g < 0 {
					pg = g
				}
			case alpha[i] == upper:
				if g < pgMinOld {
					as.Shrink(s)
					continue
				}
				if g > 0 {
					pg = g
				}
			default:
				pg = g
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)
			s++

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = clamp(old-g/qd[i], 0, upper)
				f.AddScaledTo(w, (alpha[i]-old)*y)
			}
		}
		res.Iterations++
		if cfg.Sweep != nil {
			cfg.Sweep(res.Iterations, alpha)
		}

		if pgMax-pgMin <= cfg.Eps {
			if as.Full() {
				res.Status = optimize.GradientThreshold
				break
			}
			as.Reactivate()
			pgMaxOld, pgMinOld = math.Inf(1), math.Inf(-1)
			continue
		}
		pgMaxOld, pgMinOld = pgMax, pgMin
		if pgMaxOld <= 0 {
			pgMaxOld = math.Inf(1)
		}
		if pgMinOld >= 0 {
			pgMinOld = math.Inf(-1)
		}

		progress(name, cfg, res.Iterations, pgMax-pgMin, func() float64 { return primal.Value(w) }, func() string {
			return fmt.Sprintf("dual=%.10g nSV=%d active=%d", dual(), alpha.NNZ(), as.Len())
		})
	}

	res.W = w
	res.Alpha = alpha
	res.Primal = primal.Value(w)
	res.Dual = dual()
	return finish(name, cfg, res)
}
