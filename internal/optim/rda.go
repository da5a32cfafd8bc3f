package optim

import (
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// RDAProblem names the two objectives regularized dual averaging works with.
//
// Smooth is the loss without the L1 term; only its minibatch gradients drive
// the iterates. Regularized is the same loss with the L1 term; it is only
// evaluated for the exact convergence test and the reported value. Keeping
// them as separate fields makes it impossible to swap them by position.
type RDAProblem struct {
	Smooth      objective.Objective
	Regularized objective.Objective
}

func (p RDAProblem) validate(name string) {
	if p.Smooth == nil || p.Regularized == nil {
		panic(fmt.Sprintf("optim.%s: both Smooth and Regularized objectives are required", name))
	}
	if p.Smooth.Dim() != p.Regularized.Dim() {
		panic(fmt.Sprintf("optim.%s: objective dimensions differ: %d != %d", name, p.Smooth.Dim(), p.Regularized.Dim()))
	}
}

// RegularizedDualAveraging runs ℓ1-regularized dual averaging.
//
// With ḡ the running sum of minibatch gradients after t minibatches, every
// coordinate is set in closed form:
//
//	|ḡᵢ|/t <= λ:  xᵢ = 0
//	otherwise:    xᵢ = -sign(ḡᵢ) α t^decay (|ḡᵢ|/t - λ)
//
// λ is cfg.Lambda and decay is cfg.Decay (default 0.5). The iterates always
// start at zero; x0 only fixes the dimension and a non-zero x0 is ignored
// with a warning.
func RegularizedDualAveraging(p RDAProblem, x0 linalg.Vector, cfg StochasticConfig) Result {
	p.validate("RegularizedDualAveraging")
	return rda("rda", p, x0, cfg, false)
}

// RegularizedDualAveragingAdaGrad runs dual averaging with AdaGrad scaling:
//
//	|ḡᵢ|/t <= λ:  xᵢ = 0
//	otherwise:    xᵢ = -sign(ḡᵢ) α t (|ḡᵢ|/t - λ) / √Gᵢ
//
// where Gᵢ accumulates squared gradient components starting from 1e-5.
func RegularizedDualAveragingAdaGrad(p RDAProblem, x0 linalg.Vector, cfg StochasticConfig) Result {
	p.validate("RegularizedDualAveragingAdaGrad")
	return rda("rda-adagrad", p, x0, cfg, true)
}

func rda(name string, p RDAProblem, x0 linalg.Vector, cfg StochasticConfig, adaptive bool) Result {
	mustStart(name, p.Smooth, x0)
	cfg = cfg.withDefaults(p.Smooth.Len())
	tr := tracker{name: name, verbosity: cfg.Verbosity, recorder: cfg.Recorder}
	if x0.NNZ() != 0 {
		klog.Warningf("%s: dual averaging starts from zero, ignoring non-zero start vector", name)
	}

	m := len(x0)
	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	gbar := linalg.NewVector(m)
	var sumSq linalg.Vector
	if adaptive {
		sumSq = linalg.Fill(m, adagradInitialScale)
	}
	t := 0

	return runEpochs(tr, p.Regularized, linalg.NewVector(m), cfg, func(x linalg.Vector) (float64, int) {
		mb.Shuffle()
		var f float64
		for _, batch := range mb.Batches() {
			var g linalg.Vector
			f, g = p.Smooth.BatchValueGradient(x, batch)
			t++
			gbar.AddScaledInPlace(1, g)
			if adaptive {
				for i, gi := range g {
					sumSq[i] += gi * gi
				}
			}

			tf := float64(t)
			scale := cfg.Alpha * math.Pow(tf, cfg.Decay)
			for i, gs := range gbar {
				avg := math.Abs(gs) / tf
				if avg <= cfg.Lambda {
					x[i] = 0
					continue
				}
				if adaptive {
					x[i] = -linalg.Sign(gs) * cfg.Alpha * tf * (avg - cfg.Lambda) / math.Sqrt(sumSq[i])
				} else {
					x[i] = -linalg.Sign(gs) * scale * (avg - cfg.Lambda)
				}
			}
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, mb.Len()
	})
}
