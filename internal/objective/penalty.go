package objective

import (
	"math"

	"github.com/born-ml/convex/internal/linalg"
)

// Regularizer is a separable penalty added to a sum of point losses.
type Regularizer interface {
	// Value returns the penalty at x.
	Value(x linalg.Vector) float64

	// AdjustGradient turns the gradient g of the smooth part at x into the
	// (pseudo-)gradient of the penalized objective, in place.
	AdjustGradient(g, x linalg.Vector)

	// AddHessianVector adds the penalty's curvature contribution to hv.
	AddHessianVector(hv, v linalg.Vector)

	// Weight returns λ.
	Weight() float64
}

// L2 is the ridge penalty λ/2 ‖x‖².
type L2 float64

// Value implements Regularizer.
func (r L2) Value(x linalg.Vector) float64 {
	return 0.5 * float64(r) * x.SquaredNorm()
}

// AdjustGradient implements Regularizer.
func (r L2) AdjustGradient(g, x linalg.Vector) {
	g.AddScaledInPlace(float64(r), x)
}

// AddHessianVector implements Regularizer.
func (r L2) AddHessianVector(hv, v linalg.Vector) {
	hv.AddScaledInPlace(float64(r), v)
}

// Weight implements Regularizer.
func (r L2) Weight() float64 { return float64(r) }

// L1 is the lasso penalty λ‖x‖₁.
//
// The gradient it produces is the pseudo-gradient: the minimum-norm element
// of the subdifferential. At xᵢ = 0 it is zero when |gᵢ| <= λ, which is what
// OWL-QN and the convergence tests rely on.
type L1 float64

// Value implements Regularizer.
func (r L1) Value(x linalg.Vector) float64 {
	return float64(r) * x.Norm(1)
}

// AdjustGradient implements Regularizer.
func (r L1) AdjustGradient(g, x linalg.Vector) {
	lambda := float64(r)
	for i, xi := range x {
		switch {
		case xi != 0:
			g[i] += lambda * linalg.Sign(xi)
		case g[i]+lambda < 0:
			g[i] += lambda
		case g[i]-lambda > 0:
			g[i] -= lambda
		default:
			g[i] = 0
		}
	}
}

// AddHessianVector implements Regularizer. The L1 term has no curvature.
func (r L1) AddHessianVector(_, _ linalg.Vector) {}

// Weight implements Regularizer.
func (r L1) Weight() float64 { return float64(r) }

// PseudoGradientNorm returns the infinity norm of the pseudo-gradient of
// f + λ‖x‖₁ given the smooth gradient g. Used to test L1 optimality.
func PseudoGradientNorm(g, x linalg.Vector, lambda float64) float64 {
	pg := g.Clone()
	L1(lambda).AdjustGradient(pg, x)
	return pg.Norm(math.Inf(1))
}
