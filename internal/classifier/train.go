package classifier

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/coordinate"
	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
	"github.com/born-ml/convex/internal/optim"
)

// Summary describes how one fit ended. A one-vs-rest model has one Summary
// per class.
type Summary struct {
	F           float64         // Training objective at the returned weights
	GradNorm    float64         // Final convergence measure
	Gap         float64         // Duality gap (dual coordinate descent only)
	Iterations  int             // Iterations or epochs run
	Evaluations int             // Objective evaluations spent
	Status      optimize.Status // Why the solver stopped
}

// task is one loss plus its coordinate-descent solver, if any.
type task struct {
	loss   objective.PointLoss
	params map[string]string

	// cd trains with coordinate descent; nil when the loss has no
	// coordinate-descent solver.
	cd func(ds *dataset.Dataset, cfg Config, ccfg coordinate.Config) (coordinate.Result, error)
}

// TrainLogisticRegression trains a logistic-regression classifier.
//
// Two classes give one weight vector whose positive side is the larger
// label; more classes are trained one-vs-rest. Coordinate descent requires
// the L1 penalty.
func TrainLogisticRegression(ds *dataset.Dataset, cfg Config) (*Model, error) {
	t := task{
		loss: objective.Logistic{},
		cd: func(ds *dataset.Dataset, cfg Config, ccfg coordinate.Config) (coordinate.Result, error) {
			if cfg.Penalty != L1 {
				return coordinate.Result{}, fmt.Errorf("%w: coordinate descent for logistic regression needs the l1 penalty", ErrUnsupported)
			}
			return coordinate.L1LogisticRegression(ds, 1/cfg.Lambda, ccfg), nil
		},
	}
	return trainClassifier(ds, cfg, t)
}

// TrainSVM trains a linear support vector machine. Coordinate descent runs
// the dual solver and requires the L2 penalty with the hinge or squared
// hinge loss.
func TrainSVM(ds *dataset.Dataset, cfg SVMConfig) (*Model, error) {
	t := task{}
	var dual coordinate.Loss
	switch cfg.Loss {
	case SquaredHinge:
		t.loss, dual = objective.SquaredHinge{}, coordinate.SquaredHinge
	case Hinge:
		t.loss, dual = objective.Hinge{}, coordinate.Hinge
	case HuberHinge:
		if cfg.Threshold >= 1 {
			return nil, fmt.Errorf("huber threshold %g must be below 1", cfg.Threshold)
		}
		t.loss = objective.HuberHinge{Threshold: cfg.Threshold}
		t.params = map[string]string{"threshold": formatFloat(cfg.Threshold)}
	default:
		return nil, fmt.Errorf("%w: SVMLoss(%d)", ErrUnknownLoss, int(cfg.Loss))
	}
	if cfg.Loss != HuberHinge {
		t.cd = func(ds *dataset.Dataset, cfg Config, ccfg coordinate.Config) (coordinate.Result, error) {
			if cfg.Penalty != L2 {
				return coordinate.Result{}, fmt.Errorf("%w: dual coordinate descent needs the l2 penalty", ErrUnsupported)
			}
			return coordinate.SVCDual(ds, dual, cfg.Lambda, ccfg), nil
		}
	}
	return trainClassifier(ds, cfg.Config, t)
}

// TrainSVR trains a linear support vector regressor with the ε-insensitive
// loss of width cfg.P, squared when cfg.Squared is set.
func TrainSVR(ds *dataset.Dataset, cfg SVRConfig) (*Model, error) {
	if cfg.P < 0 {
		return nil, fmt.Errorf("tube width %g must be non-negative", cfg.P)
	}
	t := task{params: map[string]string{"p": formatFloat(cfg.P)}}
	dual := coordinate.Hinge
	if cfg.Squared {
		t.loss, dual = objective.SquaredEpsilonInsensitive{P: cfg.P}, coordinate.SquaredHinge
	} else {
		t.loss = objective.EpsilonInsensitive{P: cfg.P}
	}
	p := cfg.P
	t.cd = func(ds *dataset.Dataset, cfg Config, ccfg coordinate.Config) (coordinate.Result, error) {
		if cfg.Penalty != L2 {
			return coordinate.Result{}, fmt.Errorf("%w: dual coordinate descent needs the l2 penalty", ErrUnsupported)
		}
		return coordinate.SVRDual(ds, dual, cfg.Lambda, p, ccfg), nil
	}
	return trainRegressor(ds, cfg.Config, t)
}

// TrainLeastSquares trains a ridge (L2) or lasso (L1) linear regressor.
func TrainLeastSquares(ds *dataset.Dataset, cfg Config) (*Model, error) {
	return trainRegressor(ds, cfg, task{loss: objective.Squared{}})
}

func trainClassifier(ds *dataset.Dataset, cfg Config, t task) (*Model, error) {
	cfg = cfg.withDefaults()
	if err := check(ds, cfg, t); err != nil {
		return nil, err
	}
	classes := ds.Classes()
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewClasses, len(classes))
	}

	train := ds
	if cfg.Bias {
		train = ds.WithBias(1)
	}
	m := newModel(ds, cfg, t)
	m.Classes = classes

	// Binary problems train the larger label as the positive class.
	positives := classes[1:]
	if len(classes) > 2 {
		positives = classes
	}
	for _, c := range positives {
		if cfg.Verbosity > 0 {
			klog.Infof("%s: training class %g against the rest", cfg.Algorithm, c)
		}
		y := linalg.NewVector(train.Len())
		for i, label := range train.Labels {
			y[i] = -1
			if label == c {
				y[i] = 1
			}
		}
		w, s, err := fit(relabel(train, y), cfg, t)
		if err != nil {
			return nil, err
		}
		m.Weights = append(m.Weights, w)
		m.Fits = append(m.Fits, s)
	}
	return m, nil
}

func trainRegressor(ds *dataset.Dataset, cfg Config, t task) (*Model, error) {
	cfg = cfg.withDefaults()
	if err := check(ds, cfg, t); err != nil {
		return nil, err
	}
	train := ds
	if cfg.Bias {
		train = ds.WithBias(1)
	}
	m := newModel(ds, cfg, t)
	w, s, err := fit(train, cfg, t)
	if err != nil {
		return nil, err
	}
	m.Weights = []linalg.Vector{w}
	m.Fits = []Summary{s}
	return m, nil
}

// check rejects bad input and algorithm/penalty pairs before any fit runs.
func check(ds *dataset.Dataset, cfg Config, t task) error {
	if ds == nil {
		return dataset.ErrEmptyDataset
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	if !(cfg.Lambda > 0) {
		return fmt.Errorf("regularization weight must be positive, got %g", cfg.Lambda)
	}
	if cfg.Algorithm < 0 || int(cfg.Algorithm) >= len(algorithmNames) {
		return fmt.Errorf("%w: %v", ErrUnknownAlgorithm, cfg.Algorithm)
	}
	if cfg.Penalty != L1 && cfg.Penalty != L2 {
		return fmt.Errorf("%w: %v", ErrUnknownPenalty, cfg.Penalty)
	}

	switch cfg.Algorithm {
	case OWLQN, RDA, RDAAdaGrad:
		if cfg.Penalty != L1 {
			return fmt.Errorf("%w: %s needs the l1 penalty", ErrUnsupported, cfg.Algorithm)
		}
	case TRON, SAG:
		if cfg.Penalty != L2 {
			return fmt.Errorf("%w: %s needs the l2 penalty", ErrUnsupported, cfg.Algorithm)
		}
	case CoordinateDescent:
		if t.cd == nil {
			return fmt.Errorf("%w: no coordinate-descent solver for the %s loss", ErrUnsupported, t.loss.Name())
		}
	}
	return nil
}

func newModel(ds *dataset.Dataset, cfg Config, t task) *Model {
	params := map[string]string{
		"lambda":  formatFloat(cfg.Lambda),
		"penalty": cfg.Penalty.String(),
	}
	for k, v := range t.params {
		params[k] = v
	}
	return &Model{
		Algorithm:   cfg.Algorithm,
		Loss:        t.loss.Name(),
		NumFeatures: ds.NumFeatures,
		Bias:        cfg.Bias,
		Params:      params,
	}
}

func relabel(ds *dataset.Dataset, y linalg.Vector) *dataset.Dataset {
	return &dataset.Dataset{Features: ds.Features, Labels: y, NumFeatures: ds.NumFeatures}
}

// fit runs the configured algorithm on one binary or regression problem.
//
//nolint:gocyclo,cyclop // One case per algorithm
func fit(ds *dataset.Dataset, cfg Config, t task) (linalg.Vector, Summary, error) {
	m := ds.NumFeatures
	alg := cfg.Algorithm

	if alg == CoordinateDescent {
		res, err := t.cd(ds, cfg, coordinate.Config{
			Eps:       cfg.Eps,
			MaxIter:   cfg.MaxIter,
			Seed:      cfg.Seed,
			Verbosity: cfg.Verbosity,
			Recorder:  cfg.Recorder,
		})
		if err != nil {
			return nil, Summary{}, err
		}
		return res.W, Summary{F: res.Primal, Gap: res.Gap(), Iterations: res.Iterations, Status: res.Status}, nil
	}

	var reg objective.Regularizer = objective.L2(cfg.Lambda)
	if cfg.Penalty == L1 {
		reg = objective.L1(cfg.Lambda)
	}
	obj := objective.NewLinear(m, ds.Features, ds.Labels, t.loss, reg)
	x0 := linalg.NewVector(m)

	alpha := cfg.Alpha
	if alpha == 0 {
		alpha = alg.defaultAlpha()
	}

	var res optim.Result
	if alg.stochastic() {
		sc := optim.StochasticConfig{
			NumSamples:    ds.Len(),
			MiniBatchSize: min(cfg.MiniBatch, ds.Len()),
			Alpha:         alpha,
			Tol:           cfg.Eps,
			MaxEpochs:     cfg.MaxIter,
			UseInputAlpha: cfg.Alpha != 0,
			Lambda:        cfg.Lambda,
			Seed:          cfg.Seed,
			Verbosity:     cfg.Verbosity,
			Recorder:      cfg.Recorder,
		}
		switch alg {
		case SGD:
			res = optim.SGD(obj, x0, sc)
		case SGDLineSearch:
			res = optim.SGDLineSearch(obj, x0, sc)
		case SGDDecaying:
			res = optim.SGDDecaying(obj, x0, sc)
		case AdaGrad:
			res = optim.AdaGrad(obj, x0, sc)
		case SAG:
			res = optim.StochasticAverageGradient(obj, x0, sc)
		case RDA, RDAAdaGrad:
			p := optim.RDAProblem{
				Smooth:      objective.NewLinear(m, ds.Features, ds.Labels, t.loss, objective.L2(0)),
				Regularized: obj,
			}
			if alg == RDA {
				res = optim.RegularizedDualAveraging(p, x0, sc)
			} else {
				res = optim.RegularizedDualAveragingAdaGrad(p, x0, sc)
			}
		}
		return res.X, summarize(res), nil
	}

	if alg == TRON {
		res = optim.TrustRegion(obj, x0, optim.TrustRegionConfig{
			MaxEval:   cfg.MaxIter,
			Tol:       cfg.Eps,
			Verbosity: cfg.Verbosity,
			Recorder:  cfg.Recorder,
		})
		return res.X, summarize(res), nil
	}

	bc := optim.BatchConfig{
		Alpha:         alpha,
		Gamma:         alg.defaultGamma(),
		MaxEval:       cfg.MaxIter,
		Tol:           cfg.Eps,
		UseInputAlpha: cfg.Alpha != 0,
		Memory:        cfg.Memory,
		Verbosity:     cfg.Verbosity,
		Recorder:      cfg.Recorder,
	}
	switch alg {
	case LBFGS:
		res = optim.LBFGS(obj, x0, bc)
	case GD:
		res = optim.GD(obj, x0, bc)
	case GDLineSearch:
		res = optim.GDLineSearch(obj, x0, bc)
	case BarzilaiBorwein:
		res = optim.BarzilaiBorwein(obj, x0, bc)
	case Nesterov:
		res = optim.Nesterov(obj, x0, bc)
	case ConjugateGradient:
		res = optim.ConjugateGradient(obj, x0, bc)
	case OWLQN:
		res = optim.OWLQN(obj, x0, bc)
	default:
		return nil, Summary{}, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
	return res.X, summarize(res), nil
}

func summarize(res optim.Result) Summary {
	return Summary{
		F:           res.F,
		GradNorm:    res.GradNorm,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Status:      res.Status,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
