package classifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/convex/internal/optim"
)

// Common errors.
var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrUnknownPenalty   = errors.New("unknown penalty")
	ErrUnknownLoss      = errors.New("unknown loss")
	ErrUnsupported      = errors.New("unsupported algorithm and objective combination")
	ErrTooFewClasses    = errors.New("training labels hold fewer than two classes")
	ErrNotClassifier    = errors.New("model is a regressor")
	ErrModelMismatch    = errors.New("model file does not describe a valid model")
)

// Defaults for Config.
const (
	DefaultLambda    = 1
	DefaultMaxIter   = 250
	DefaultEps       = 1e-2
	DefaultMiniBatch = 100
	DefaultMemory    = 100
	DefaultHuber     = 0.5
	DefaultSVREps    = 0.1
)

// Config holds the settings shared by every trainer.
//
// Zero-valued numeric fields take the defaults above. MaxIter bounds the
// objective evaluations of batch methods, the epochs of stochastic methods
// and the outer iterations of coordinate descent. Eps is the matching
// stopping tolerance.
type Config struct {
	Algorithm Algorithm
	Penalty   Penalty
	Lambda    float64 // Regularization weight (default: 1)
	MaxIter   int     // Iteration budget (default: 250)
	Eps       float64 // Stopping tolerance (default: 1e-2)
	MiniBatch int     // Minibatch size of stochastic methods (default: 100)
	Memory    int     // L-BFGS and OWL-QN history length (default: 100)

	// Alpha overrides the algorithm's initial step length when non-zero.
	Alpha float64

	// Bias appends a constant feature so that the model learns an intercept.
	Bias bool

	Seed      int64 // Shuffling seed for stochastic and coordinate methods; 0 uses the current time
	Verbosity int   // Solver log verbosity

	// Recorder receives the progress of every fit; one-vs-rest training
	// reports all of its fits to it in class order.
	Recorder optim.Recorder
}

func (c Config) withDefaults() Config {
	if c.Lambda == 0 {
		c.Lambda = DefaultLambda
	}
	if c.MaxIter == 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Eps == 0 {
		c.Eps = DefaultEps
	}
	if c.MiniBatch == 0 {
		c.MiniBatch = DefaultMiniBatch
	}
	if c.Memory == 0 {
		c.Memory = DefaultMemory
	}
	return c
}

// SVMLoss selects the margin loss of an SVM.
type SVMLoss int

// Supported SVM losses.
const (
	SquaredHinge SVMLoss = iota // max(0, 1-y w·x)²
	Hinge                       // max(0, 1-y w·x)
	HuberHinge                  // Huber-smoothed hinge with threshold SVMConfig.Threshold
)

var svmLossNames = [...]string{"squared-hinge", "hinge", "huber-hinge"}

func (l SVMLoss) String() string {
	if l < 0 || int(l) >= len(svmLossNames) {
		return fmt.Sprintf("SVMLoss(%d)", int(l))
	}
	return svmLossNames[l]
}

// ParseSVMLoss accepts "squared-hinge", "hinge" or "huber-hinge".
func ParseSVMLoss(s string) (SVMLoss, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range svmLossNames {
		if n == name {
			return SVMLoss(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLoss, s)
}

// SVMConfig configures TrainSVM. Threshold is used as given, including
// zero; DefaultSVMConfig sets it to DefaultHuber.
type SVMConfig struct {
	Config
	Loss      SVMLoss
	Threshold float64 // Huber threshold, must be < 1
}

// DefaultSVMConfig returns a squared-hinge SVM config with the Huber
// threshold preset.
func DefaultSVMConfig() SVMConfig {
	return SVMConfig{Loss: SquaredHinge, Threshold: DefaultHuber}
}

// SVRConfig configures TrainSVR. P is used as given, including zero;
// DefaultSVRConfig sets it to DefaultSVREps.
type SVRConfig struct {
	Config
	Squared bool    // Square the ε-insensitive loss
	P       float64 // Width of the insensitive tube, must be >= 0
}

// DefaultSVRConfig returns an ε-insensitive SVR config with the tube width
// preset.
func DefaultSVRConfig() SVRConfig {
	return SVRConfig{P: DefaultSVREps}
}
