package optim

// Defaults shared by the solvers.
const (
	DefaultMaxEval      = 1000
	DefaultTol          = 1e-3
	DefaultGamma        = 1e-4
	DefaultMemory       = 10
	DefaultOWLQNMemory  = 100
	DefaultCGTol        = 0.1
	DefaultStochAlpha   = 0.1
	DefaultRDADecay     = 0.5
	DefaultMiniBatch    = 1
	adagradInitialScale = 1e-5
)

// BatchConfig holds configuration for the full-gradient solvers.
//
// Zero-valued numeric fields are replaced by defaults when a solver starts.
// The default step differs per method: 0.1 for GD, 1 for the line-search
// methods.
type BatchConfig struct {
	Alpha   float64 // Initial step length
	Gamma   float64 // Armijo sufficient-decrease factor (default: 1e-4)
	MaxEval int     // Objective evaluation budget (default: 1000)
	Tol     float64 // Gradient-norm tolerance (default: 1e-3)

	// KeepAlpha disables the step reset after an accepted line search; the
	// next search then starts from the last accepted step.
	KeepAlpha bool

	// UseInputAlpha starts the first line search at Alpha instead of 1/‖g₀‖.
	UseInputAlpha bool

	Memory    int      // Correction pairs kept by LBFGS (default 10) and OWLQN (default 100)
	Verbosity int      // 0 silent, >0 logs every accepted iteration
	Recorder  Recorder // Optional progress hook
}

func (c BatchConfig) withDefaults(alpha float64, memory int) BatchConfig {
	if c.Alpha == 0 {
		c.Alpha = alpha
	}
	if c.Gamma == 0 {
		c.Gamma = DefaultGamma
	}
	if c.MaxEval == 0 {
		c.MaxEval = DefaultMaxEval
	}
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.Memory == 0 {
		c.Memory = memory
	}
	return c
}

// TrustRegionConfig holds configuration for TrustRegion.
type TrustRegionConfig struct {
	MaxEval   int      // Objective evaluation budget (default: 1000)
	Tol       float64  // Relative gradient tolerance against ‖∇f(0)‖ (default: 1e-3)
	CGTol     float64  // Inner conjugate-gradient relative tolerance (default: 0.1)
	Verbosity int      // 0 silent, >0 logs every iteration
	Recorder  Recorder // Optional progress hook
}

func (c TrustRegionConfig) withDefaults() TrustRegionConfig {
	if c.MaxEval == 0 {
		c.MaxEval = DefaultMaxEval
	}
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.CGTol == 0 {
		c.CGTol = DefaultCGTol
	}
	return c
}

// StochasticConfig holds configuration for the minibatch solvers.
//
// Convergence is tested once per epoch. With Verbosity >= 2 the test uses the
// full gradient norm, which costs one full evaluation per epoch; otherwise it
// uses |Δf| between the last two minibatch losses.
type StochasticConfig struct {
	NumSamples    int     // Terms to sample from (default: objective Len())
	MiniBatchSize int     // Terms per minibatch (default: 1)
	Alpha         float64 // Step length / learning rate (default: 0.1)
	Tol           float64 // Convergence tolerance (default: 1e-3)
	MaxEpochs     int     // Epoch budget (default: 1000)

	Gamma         float64 // Armijo factor for SGDLineSearch (default: 1e-4)
	KeepAlpha     bool    // SGDLineSearch: do not reset the step after acceptance
	UseInputAlpha bool    // SGDLineSearch: start from Alpha instead of 1/‖g‖

	Lambda float64 // L1 weight for RDA, strong-convexity constant for SAG
	Decay  float64 // RDA step exponent (default: 0.5)

	Seed      int64    // Shuffling seed; 0 uses the current time
	Verbosity int      // 0 silent, 1 per epoch, >=2 exact convergence test, >2 per minibatch
	Recorder  Recorder // Optional per-epoch hook
}

func (c StochasticConfig) withDefaults(n int) StochasticConfig {
	if c.NumSamples == 0 {
		c.NumSamples = n
	}
	if c.MiniBatchSize == 0 {
		c.MiniBatchSize = DefaultMiniBatch
	}
	if c.Alpha == 0 {
		c.Alpha = DefaultStochAlpha
	}
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.MaxEpochs == 0 {
		c.MaxEpochs = DefaultMaxEval
	}
	if c.Gamma == 0 {
		c.Gamma = DefaultGamma
	}
	if c.Decay == 0 {
		c.Decay = DefaultRDADecay
	}
	return c
}
