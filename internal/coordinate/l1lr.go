package coordinate

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// newGLMNET constants.
const (
	glmnetNu            = 1e-12 // Hessian diagonal floor
	glmnetSigma         = 0.01  // sufficient decrease
	glmnetMaxLineSearch = 20
	glmnetMaxStep       = 10.0 // per-coordinate step clip in the inner solver
)

// L1LogisticRegression minimizes
//
//	‖w‖₁ + C Σ log(1 + exp(-yᵢ w·xᵢ))
//
// with newGLMNET: each Newton iteration builds the quadratic model of the
// logistic term at w, minimizes model plus ‖·‖₁ by randomized coordinate
// descent over the feature columns, and backtracks along the resulting
// direction. Both levels shrink coordinates sitting at zero with a clearly
// inactive subgradient. The run stops when the ℓ1 norm of the minimum-norm
// subgradient drops below Eps times its value at w = 0.
//
// Result.Primal is reported in the units of objective.NewL1Logistic with
// λ = 1/C, that is the objective above divided by C.
func L1LogisticRegression(ds *dataset.Dataset, c float64, cfg Config) Result {
	const name = "l1lr-primal"
	if !(c > 0) {
		panic(fmt.Sprintf("coordinate.L1LogisticRegression: C must be positive, got %g", c))
	}
	mustProblem("L1LogisticRegression", ds, 1/c, true)
	cfg = cfg.withDefaults(DefaultL1Eps, DefaultNewtonMaxIter)

	n, m := ds.Len(), ds.NumFeatures
	y := ds.Labels
	cols := ds.Columns()
	obj := objective.NewL1Logistic(m, ds.Features, y, 1/c)

	w := linalg.NewVector(m)
	wpd := linalg.NewVector(m) // candidate w + d
	hdiag := linalg.NewVector(m)
	grad := linalg.NewVector(m)
	negSum := linalg.NewVector(m) // C Σ_{yᵢ=-1} xᵢⱼ
	for j, col := range cols {
		for k, i := range col.Index {
			if y[i] == -1 {
				negSum[j] += c * col.Value[k]
			}
		}
	}

	xTd := linalg.NewVector(n)
	expWTx := linalg.Fill(n, 1)
	expWTxNew := linalg.NewVector(n)
	tau := linalg.NewVector(n)
	curv := linalg.NewVector(n)
	refresh := func(i int) {
		e := expWTx[i]
		if math.IsInf(e, 1) {
			tau[i], curv[i] = 0, 0
			return
		}
		t := 1 / (1 + e)
		tau[i] = c * t
		curv[i] = c * e * t * t
	}
	for i := range expWTx {
		refresh(i)
	}

	as := NewActiveSet(m)
	rng := newRand(cfg.Seed)
	nf := float64(n)
	gMaxOld := 1e30
	gNorm1Init := -1.0
	innerEps := 1.0
	var wNorm float64
	res := Result{Status: optimize.NotTerminated}

	for res.Iterations < cfg.MaxIter {
		var gMax, gNorm1 float64
		as.Release()
		for s := 0; s < as.Len(); {
			j := as.At(s)
			h, tmp := glmnetNu, 0.0
			for k, i := range cols[j].Index {
				v := cols[j].Value[k]
				h += v * v * curv[i]
				tmp += v * tau[i]
			}
			hdiag[j] = h
			grad[j] = negSum[j] - tmp

			gp, gn := grad[j]+1, grad[j]-1
			var violation float64
			switch {
			case w[j] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld/nf && gn < -gMaxOld/nf {
					as.Shrink(s)
					continue
				}
			case w[j] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gMax = math.Max(gMax, violation)
			gNorm1 += violation
			s++
		}
		if res.Iterations == 0 {
			gNorm1Init = gNorm1
		}
		if gNorm1 <= cfg.Eps*gNorm1Init {
			res.Status = optimize.GradientThreshold
			break
		}

		inner := minimizeModel(cols, as, rng, cfg.MaxInnerIter, innerEps*gNorm1Init, w, wpd, hdiag, grad, curv, xTd)
		if inner >= cfg.MaxInnerIter {
			klog.Warningf("%s: inner solver reached the maximum of %d sweeps", name, cfg.MaxInnerIter)
		}

		// Backtrack along d = wpd - w.
		var delta, wNormNew float64
		for j := range w {
			delta += grad[j] * (wpd[j] - w[j])
			wNormNew += math.Abs(wpd[j])
		}
		delta += wNormNew - wNorm
		var negTd float64
		for i, yi := range y {
			if yi == -1 {
				negTd += c * xTd[i]
			}
		}

		accepted := false
		for ls := 0; ls < glmnetMaxLineSearch; ls++ {
			cond := wNormNew - wNorm + negTd - glmnetSigma*delta
			for i := range xTd {
				e := math.Exp(xTd[i])
				expWTxNew[i] = expWTx[i] * e
				cond += c * math.Log((1+expWTxNew[i])/(e+expWTxNew[i]))
			}
			if cond <= 0 {
				wNorm = wNormNew
				w.CopyFrom(wpd)
				expWTx.CopyFrom(expWTxNew)
				for i := range expWTx {
					refresh(i)
				}
				accepted = true
				break
			}
			wNormNew = 0
			for j := range wpd {
				wpd[j] = 0.5 * (w[j] + wpd[j])
				wNormNew += math.Abs(wpd[j])
			}
			delta *= 0.5
			negTd *= 0.5
			xTd.ScaleInPlace(0.5)
		}
		if !accepted {
			klog.Warningf("%s: line search failed after %d halvings, recomputing margins", name, glmnetMaxLineSearch)
			for i, f := range ds.Features {
				expWTx[i] = math.Exp(f.Dot(w))
				refresh(i)
			}
			wpd.CopyFrom(w)
		}

		if inner == 1 {
			innerEps *= 0.25
		}
		res.Iterations++
		gMaxOld = gMax

		progress(name, cfg, res.Iterations, gNorm1, func() float64 { return obj.Value(w) }, func() string {
			return fmt.Sprintf("sweeps=%d nnz=%d/%d", inner, w.NNZ(), m)
		})
	}

	res.W = w
	res.Primal = obj.Value(w)
	return finish(name, cfg, res)
}

// minimizeModel runs randomized coordinate descent on the quadratic model of
// one Newton iteration, moving wpd and keeping xTd = X(wpd - w) current. It
// works on the active prefix pinned by the outer loop and returns the number
// of sweeps it ran.
func minimizeModel(cols []*dataset.SparseFeature, as *ActiveSet, rng *rand.Rand,
	maxIter int, tol float64, w, wpd, hdiag, grad, curv, xTd linalg.Vector) int {
	nf := float64(xTd.Len())
	for i := range xTd {
		xTd[i] = 0
	}
	as.Pin()
	gMaxOld := 1e30
	iter := 0

	for iter < maxIter {
		var gMax, gNorm1 float64
		as.Shuffle(rng)

		for s := 0; s < as.Len(); {
			j := as.At(s)
			col := cols[j]
			h := hdiag[j]
			g := grad[j] + (wpd[j]-w[j])*glmnetNu
			for k, i := range col.Index {
				g += col.Value[k] * curv[i] * xTd[i]
			}

			gp, gn := g+1, g-1
			var violation float64
			switch {
			case wpd[j] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld/nf && gn < -gMaxOld/nf {
					as.Shrink(s)
					continue
				}
			case wpd[j] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gMax = math.Max(gMax, violation)
			gNorm1 += violation
			s++

			var z float64
			switch {
			case gp < h*wpd[j]:
				z = -gp / h
			case gn > h*wpd[j]:
				z = -gn / h
			default:
				z = -wpd[j]
			}
			if math.Abs(z) < 1e-12 {
				continue
			}
			z = clamp(z, -glmnetMaxStep, glmnetMaxStep)
			wpd[j] += z
			col.AddScaledTo(xTd, z)
		}
		iter++

		if gNorm1 <= tol {
			if as.Full() {
				break
			}
			as.Reactivate()
			gMaxOld = 1e30
			continue
		}
		gMaxOld = gMax
	}
	return iter
}
