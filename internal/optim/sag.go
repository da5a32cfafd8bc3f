package optim

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

// StochasticAverageGradient runs SAG over a fixed minibatch partition.
//
// A warm-up sweep stores every batch gradient at x0, their sum, and
// L = max ‖g_b‖². The step is η = 1/(0.25 L + λ) with λ = cfg.Lambda, the
// strong-convexity constant. Each iteration refreshes the stored gradient of
// one random batch slot and moves x by -(η/B)·Σ g_b, B being the number of
// batches. An epoch is B iterations. Without λ the step may be too long;
// a diverging run stops with optimize.Failure at the last finite iterate.
func StochasticAverageGradient(obj objective.Objective, x0 linalg.Vector, cfg StochasticConfig) Result {
	mustStart("StochasticAverageGradient", obj, x0)
	cfg = cfg.withDefaults(obj.Len())
	tr := tracker{name: "sag", verbosity: cfg.Verbosity, recorder: cfg.Recorder}

	mb := NewMinibatches(cfg.NumSamples, cfg.MiniBatchSize, cfg.Seed)
	batches := mb.Batches()
	nb := len(batches)
	x := x0.Clone()

	stored := make([]linalg.Vector, nb)
	sum := linalg.NewVector(len(x))
	var lipschitz float64
	for b, batch := range batches {
		_, g := obj.BatchValueGradient(x, batch)
		stored[b] = g
		sum.AddScaledInPlace(1, g)
		lipschitz = max(lipschitz, g.SquaredNorm())
	}

	if cfg.Lambda <= 0 {
		klog.Warningf("sag: strong-convexity constant is %g, the step 1/(0.25 L) may diverge", cfg.Lambda)
	}
	eta := cfg.Alpha
	if den := 0.25*lipschitz + cfg.Lambda; den > 0 {
		eta = 1 / den
	}
	if cfg.Verbosity > 0 {
		klog.Infof("sag: %d batches, L=%.4g, step=%.4g", nb, lipschitz, eta)
	}
	cfg.Alpha = eta
	t := 0

	res := runEpochs(tr, obj, x, cfg, func(x linalg.Vector) (float64, int) {
		var f float64
		for k := 0; k < nb; k++ {
			j := mb.Intn(nb)
			var g linalg.Vector
			f, g = obj.BatchValueGradient(x, batches[j])
			sum.AddScaledInPlace(1, g)
			sum.AddScaledInPlace(-1, stored[j])
			stored[j] = g
			x.AddScaledInPlace(-eta/float64(nb), sum)
			t++
			logBatch(tr, cfg.Verbosity, t, f)
		}
		return f, nb
	})
	res.Evaluations += nb
	return res
}
