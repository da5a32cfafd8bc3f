package objective

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/convex/internal/linalg"
)

// marginClamp bounds margins fed to exp so that the logistic and probit
// losses stay finite.
const marginClamp = 1e2

// probitFloor keeps log(Φ) finite for very negative margins.
const probitFloor = 1e-16

// PointLoss is the loss of one example as a function of the linear score
// z = w·x and the label y. Eval returns the loss and its first and second
// derivatives with respect to z.
type PointLoss interface {
	Eval(z, y float64) (loss, d1, d2 float64)
	Name() string
}

// Logistic is log(1 + exp(-y z)).
type Logistic struct{}

// Eval implements PointLoss.
func (Logistic) Eval(z, y float64) (float64, float64, float64) {
	m := y * z
	var loss, p float64 // p = σ(-m)
	switch {
	case m < -marginClamp:
		loss, p = -m, 1
	case m > marginClamp:
		loss, p = math.Exp(-m), math.Exp(-m)
	default:
		e := math.Exp(-m)
		loss = math.Log1p(e)
		p = e / (1 + e)
	}
	return loss, -y * p, p * (1 - p) * y * y
}

// Name implements PointLoss.
func (Logistic) Name() string { return "logistic" }

// Probit is -log Φ(y z) with Φ the standard normal CDF.
type Probit struct{}

// Eval implements PointLoss.
func (Probit) Eval(z, y float64) (float64, float64, float64) {
	u := math.Max(-marginClamp, math.Min(marginClamp, y*z))
	cdf := distuv.UnitNormal.CDF(u) + probitFloor
	r := distuv.UnitNormal.Prob(u) / cdf
	return -math.Log(cdf), -y * r, r * (u + r) * y * y
}

// Name implements PointLoss.
func (Probit) Name() string { return "probit" }

// Squared is (y - z)^2.
type Squared struct{}

// Eval implements PointLoss.
func (Squared) Eval(z, y float64) (float64, float64, float64) {
	r := z - y
	return r * r, 2 * r, 2
}

// Name implements PointLoss.
func (Squared) Name() string { return "squared" }

// SquaredHinge is max(0, 1 - y z)^2. Examples with y z <= 1 form the
// support set; only they contribute curvature.
type SquaredHinge struct{}

// Eval implements PointLoss.
func (SquaredHinge) Eval(z, y float64) (float64, float64, float64) {
	s := 1 - y*z
	if s < 0 {
		return 0, 0, 0
	}
	return s * s, -2 * s * y, 2 * y * y
}

// Name implements PointLoss.
func (SquaredHinge) Name() string { return "squared-hinge" }

// Hinge is max(0, 1 - y z). Its derivative is a subgradient.
type Hinge struct{}

// Eval implements PointLoss.
func (Hinge) Eval(z, y float64) (float64, float64, float64) {
	s := 1 - y*z
	if s <= 0 {
		return 0, 0, 0
	}
	return s, -y, 0
}

// Name implements PointLoss.
func (Hinge) Name() string { return "hinge" }

// HuberHinge is the squared hinge with a linear tail below Threshold:
//
//	v <= h:     (1-h)^2 + 2(1-h)(h-v)
//	h < v < 1:  (1-v)^2
//	v >= 1:     0
//
// where v = y z and h = Threshold < 1.
type HuberHinge struct {
	Threshold float64
}

// Eval implements PointLoss.
func (l HuberHinge) Eval(z, y float64) (float64, float64, float64) {
	h := l.Threshold
	v := y * z
	switch {
	case v <= h:
		return (1-h)*(1-h) + 2*(1-h)*(h-v), -2 * (1 - h) * y, 0
	case v < 1:
		return (1 - v) * (1 - v), -2 * (1 - v) * y, 2 * y * y
	default:
		return 0, 0, 0
	}
}

// Name implements PointLoss.
func (HuberHinge) Name() string { return "huber-hinge" }

// EpsilonInsensitive is max(0, |z - y| - P), the SVR L1 loss.
type EpsilonInsensitive struct {
	P float64
}

// Eval implements PointLoss.
func (l EpsilonInsensitive) Eval(z, y float64) (float64, float64, float64) {
	r := z - y
	if math.Abs(r) <= l.P {
		return 0, 0, 0
	}
	return math.Abs(r) - l.P, linalg.Sign(r), 0
}

// Name implements PointLoss.
func (EpsilonInsensitive) Name() string { return "epsilon-insensitive" }

// SquaredEpsilonInsensitive is max(0, |z - y| - P)^2, the SVR L2 loss.
type SquaredEpsilonInsensitive struct {
	P float64
}

// Eval implements PointLoss.
func (l SquaredEpsilonInsensitive) Eval(z, y float64) (float64, float64, float64) {
	r := z - y
	switch {
	case r > l.P:
		return (r - l.P) * (r - l.P), 2 * (r - l.P), 2
	case r < -l.P:
		return (r + l.P) * (r + l.P), 2 * (r + l.P), 2
	default:
		return 0, 0, 0
	}
}

// Name implements PointLoss.
func (SquaredEpsilonInsensitive) Name() string { return "squared-epsilon-insensitive" }
