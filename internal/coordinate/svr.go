package coordinate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// SVRDual trains an ℓ2-regularized linear support vector regressor by
// coordinate descent on the dual problem
//
//	min_β ½ βᵀQβ - yᵀβ + p‖β‖₁ + ½ λ' ‖β‖²   s.t. -U <= βᵢ <= U
//
// with Qᵢⱼ = xᵢ·xⱼ and C = 1/lambda. The ε-insensitive loss uses U = C and
// λ' = 0; its square uses U = ∞ and λ' = 0.5/C. Each coordinate takes the
// exact minimizer of its one-variable problem, clipped to the bounds.
//
// The solver stops when the ℓ1 norm of the violations over a full-set sweep
// drops below Eps times that of the first sweep.
func SVRDual(ds *dataset.Dataset, loss Loss, lambda, p float64, cfg Config) Result {
	const name = "svr-dual"
	mustProblem("SVRDual", ds, lambda, false)
	if p < 0 {
		panic(fmt.Sprintf("coordinate.SVRDual: insensitivity must be non-negative, got %g", p))
	}
	cfg = cfg.withDefaults(DefaultDualEps, DefaultDualMaxIter)

	n, m := ds.Len(), ds.NumFeatures
	c := 1 / lambda
	var reg, upper float64
	var primal *objective.Linear
	switch loss {
	case Hinge:
		reg, upper = 0, c
		primal = objective.NewL2HingeSVR(m, ds.Features, ds.Labels, lambda, p)
	case SquaredHinge:
		reg, upper = 0.5/c, math.Inf(1)
		primal = objective.NewL2SmoothSVR(m, ds.Features, ds.Labels, lambda, p)
	default:
		panic(fmt.Sprintf("coordinate.SVRDual: unsupported loss %v", loss))
	}

	w := linalg.NewVector(m)
	beta := linalg.NewVector(n)
	qd := make([]float64, n)
	for i, f := range ds.Features {
		qd[i] = f.SquaredNorm()
	}
	dual := func() float64 {
		v := 0.5 * w.SquaredNorm()
		for i, b := range beta {
			v += p*math.Abs(b) - ds.Labels[i]*b + 0.5*reg*b*b
		}
		return -lambda * v
	}

	as := NewActiveSet(n)
	rng := newRand(cfg.Seed)
	gMaxOld := math.Inf(1)
	gNorm1Init := -1.0
	res := Result{Status: optimize.NotTerminated}

	for res.Iterations < cfg.MaxIter {
		var gMax, gNorm1 float64
		as.Shuffle(rng)

		for s := 0; s < as.Len(); {
			i := as.At(s)
			f := ds.Features[i]
			g := f.Dot(w) - ds.Labels[i] + reg*beta[i]
			h := qd[i] + reg
			gp, gn := g+p, g-p

			var violation float64
			switch {
			case beta[i] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld && gn < -gMaxOld {
					as.Shrink(s)
					continue
				}
			case beta[i] >= upper:
				if gp > 0 {
					violation = gp
				} else if gp < -gMaxOld {
					as.Shrink(s)
					continue
				}
			case beta[i] <= -upper:
				if gn < 0 {
					violation = -gn
				} else if gn > gMaxOld {
					as.Shrink(s)
					continue
				}
			case beta[i] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gMax = math.Max(gMax, violation)
			gNorm1 += violation
			s++

			var d float64
			switch {
			case gp < h*beta[i]:
				d = -gp / h
			case gn > h*beta[i]:
				d = -gn / h
			default:
				d = -beta[i]
			}
			if math.Abs(d) < 1e-12 {
				continue
			}
			old := beta[i]
			beta[i] = clamp(old+d, -upper, upper)
			if d = beta[i] - old; d != 0 {
				f.AddScaledTo(w, d)
			}
		}
		if res.Iterations == 0 {
			gNorm1Init = gNorm1
		}
		res.Iterations++
		if cfg.Sweep != nil {
			cfg.Sweep(res.Iterations, beta)
		}

		if gNorm1 <= cfg.Eps*gNorm1Init {
			if as.Full() {
				res.Status = optimize.GradientThreshold
				break
			}
			as.Reactivate()
			gMaxOld = math.Inf(1)
			continue
		}
		gMaxOld = gMax

		progress(name, cfg, res.Iterations, gNorm1, func() float64 { return primal.Value(w) }, func() string {
			return fmt.Sprintf("dual=%.10g nSV=%d active=%d", dual(), beta.NNZ(), as.Len())
		})
	}

	res.W = w
	res.Alpha = beta
	res.Primal = primal.Value(w)
	res.Dual = dual()
	return finish(name, cfg, res)
}
