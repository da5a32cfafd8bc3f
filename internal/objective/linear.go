package objective

import (
	"fmt"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
)

// Linear is a regularized empirical risk over a linear model:
//
//	f(w) = Σᵢ loss(w·xᵢ, yᵢ) + R(w)
//
// It holds the training data by reference and never mutates it. Minibatch
// evaluation sums the loss over the batch only and keeps the full penalty.
type Linear struct {
	loss     PointLoss
	reg      Regularizer
	features []dataset.Feature
	labels   linalg.Vector
	dim      int
}

// NewLinear builds a Linear objective of dimension m. It panics if the
// features and labels disagree in length or a feature's dimension is not m.
func NewLinear(m int, features []dataset.Feature, labels linalg.Vector, loss PointLoss, reg Regularizer) *Linear {
	if len(features) != len(labels) {
		panic(fmt.Sprintf("objective.NewLinear(%s): %d features but %d labels", loss.Name(), len(features), len(labels)))
	}
	for i, f := range features {
		if f.Dim() != m {
			panic(fmt.Sprintf("objective.NewLinear(%s): feature %d has dimension %d, want %d", loss.Name(), i, f.Dim(), m))
		}
	}
	return &Linear{loss: loss, reg: reg, features: features, labels: labels, dim: m}
}

// NewL2Logistic returns Σ log(1+exp(-yᵢ w·xᵢ)) + λ/2‖w‖².
func NewL2Logistic(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Logistic{}, L2(lambda))
}

// NewL1Logistic returns Σ log(1+exp(-yᵢ w·xᵢ)) + λ‖w‖₁ with a pseudo-gradient.
func NewL1Logistic(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Logistic{}, L1(lambda))
}

// NewL2Probit returns Σ -log Φ(yᵢ w·xᵢ) + λ/2‖w‖².
func NewL2Probit(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Probit{}, L2(lambda))
}

// NewL1Probit returns Σ -log Φ(yᵢ w·xᵢ) + λ‖w‖₁.
func NewL1Probit(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Probit{}, L1(lambda))
}

// NewL2LeastSquares returns Σ (yᵢ - w·xᵢ)² + λ/2‖w‖².
func NewL2LeastSquares(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Squared{}, L2(lambda))
}

// NewL1LeastSquares returns Σ (yᵢ - w·xᵢ)² + λ‖w‖₁.
func NewL1LeastSquares(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Squared{}, L1(lambda))
}

// NewL2SmoothSVM returns Σ max(0, 1-yᵢ w·xᵢ)² + λ/2‖w‖².
func NewL2SmoothSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, SquaredHinge{}, L2(lambda))
}

// NewL1SmoothSVM returns Σ max(0, 1-yᵢ w·xᵢ)² + λ‖w‖₁.
func NewL1SmoothSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, SquaredHinge{}, L1(lambda))
}

// NewL2HuberSVM returns the Huberized hinge loss with threshold h plus λ/2‖w‖².
func NewL2HuberSVM(m int, features []dataset.Feature, y linalg.Vector, h, lambda float64) *Linear {
	mustThreshold(h)
	return NewLinear(m, features, y, HuberHinge{Threshold: h}, L2(lambda))
}

// NewL1HuberSVM returns the Huberized hinge loss with threshold h plus λ‖w‖₁.
func NewL1HuberSVM(m int, features []dataset.Feature, y linalg.Vector, h, lambda float64) *Linear {
	mustThreshold(h)
	return NewLinear(m, features, y, HuberHinge{Threshold: h}, L1(lambda))
}

// NewL2HingeSVM returns Σ max(0, 1-yᵢ w·xᵢ) + λ/2‖w‖². The gradient is a
// subgradient and the Hessian is λI.
func NewL2HingeSVM(m int, features []dataset.Feature, y linalg.Vector, lambda float64) *Linear {
	return NewLinear(m, features, y, Hinge{}, L2(lambda))
}

// NewL2HingeSVR returns Σ max(0, |w·xᵢ - yᵢ| - p) + λ/2‖w‖².
func NewL2HingeSVR(m int, features []dataset.Feature, y linalg.Vector, lambda, p float64) *Linear {
	return NewLinear(m, features, y, EpsilonInsensitive{P: p}, L2(lambda))
}

// NewL2SmoothSVR returns Σ max(0, |w·xᵢ - yᵢ| - p)² + λ/2‖w‖².
func NewL2SmoothSVR(m int, features []dataset.Feature, y linalg.Vector, lambda, p float64) *Linear {
	return NewLinear(m, features, y, SquaredEpsilonInsensitive{P: p}, L2(lambda))
}

func mustThreshold(h float64) {
	if h >= 1 {
		panic(fmt.Sprintf("objective: Huber threshold %v must be below 1", h))
	}
}

// Dim implements Objective.
func (l *Linear) Dim() int { return l.dim }

// Len implements Objective.
func (l *Linear) Len() int { return len(l.features) }

// Loss returns the per-example loss.
func (l *Linear) Loss() PointLoss { return l.loss }

// Regularizer returns the penalty term.
func (l *Linear) Regularizer() Regularizer { return l.reg }

// String describes the objective, e.g. "logistic+L2(1)".
func (l *Linear) String() string {
	switch l.reg.(type) {
	case L1:
		return fmt.Sprintf("%s+L1(%g)", l.loss.Name(), l.reg.Weight())
	default:
		return fmt.Sprintf("%s+L2(%g)", l.loss.Name(), l.reg.Weight())
	}
}

// Value implements Objective.
func (l *Linear) Value(x linalg.Vector) float64 {
	mustDim("objective.Linear.Value", l.dim, x)
	f := l.reg.Value(x)
	for i, feat := range l.features {
		loss, _, _ := l.loss.Eval(feat.Dot(x), l.labels[i])
		f += loss
	}
	return f
}

// ValueGradient implements Objective.
func (l *Linear) ValueGradient(x linalg.Vector) (float64, linalg.Vector) {
	mustDim("objective.Linear.ValueGradient", l.dim, x)
	f, g, _ := l.accumulate(x, nil, false)
	return f, g
}

// Linearize implements Objective. The returned context stores the per-example
// curvature weights (the support set for hinge-type losses).
func (l *Linear) Linearize(x linalg.Vector) (float64, linalg.Vector, Linearization) {
	mustDim("objective.Linear.Linearize", l.dim, x)
	f, g, curv := l.accumulate(x, nil, true)
	return f, g, &linearLinearization{x: x.Clone(), curvature: curv}
}

// HessianVector implements Objective.
func (l *Linear) HessianVector(lin Linearization, v linalg.Vector) linalg.Vector {
	mustDim("objective.Linear.HessianVector", l.dim, v)
	ll, ok := lin.(*linearLinearization)
	if !ok || len(ll.curvature) != len(l.features) {
		_, _, fresh := l.Linearize(lin.Point())
		ll = fresh.(*linearLinearization)
	}
	hv := linalg.NewVector(l.dim)
	for i, feat := range l.features {
		if c := ll.curvature[i]; c != 0 {
			feat.AddScaledTo(hv, c*feat.Dot(v))
		}
	}
	l.reg.AddHessianVector(hv, v)
	return hv
}

// BatchValueGradient implements Objective.
func (l *Linear) BatchValueGradient(x linalg.Vector, batch []int) (float64, linalg.Vector) {
	mustDim("objective.Linear.BatchValueGradient", l.dim, x)
	mustBatch("objective.Linear.BatchValueGradient", len(l.features), batch)
	f, g, _ := l.accumulate(x, batch, false)
	return f, g
}

// accumulate sums loss and gradient over batch (all examples when nil) and
// applies the penalty. With curvature set it also records d2 per example.
func (l *Linear) accumulate(x linalg.Vector, batch []int, curvature bool) (float64, linalg.Vector, []float64) {
	g := linalg.NewVector(l.dim)
	var curv []float64
	if curvature {
		curv = make([]float64, len(l.features))
	}
	var f float64
	visit := func(i int) {
		feat := l.features[i]
		loss, d1, d2 := l.loss.Eval(feat.Dot(x), l.labels[i])
		f += loss
		if d1 != 0 {
			feat.AddScaledTo(g, d1)
		}
		if curvature {
			curv[i] = d2
		}
	}
	if batch == nil {
		for i := range l.features {
			visit(i)
		}
	} else {
		for _, i := range batch {
			visit(i)
		}
	}
	f += l.reg.Value(x)
	l.reg.AdjustGradient(g, x)
	return f, g, curv
}

type linearLinearization struct {
	x         linalg.Vector
	curvature []float64
}

func (l *linearLinearization) Point() linalg.Vector { return l.x }
