package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/classifier"
	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/report"
)

type trainCmd struct {
	kind      string
	algorithm string
	penalty   string
	lambda    float64
	maxIter   int
	eps       float64
	miniBatch int
	memory    int
	alpha     float64
	bias      bool
	seed      int64
	verbosity int

	loss      string
	threshold float64
	p         float64
	squared   bool

	labels      string
	testFile    string
	split       float64
	output      string
	plot        string
	plotMeasure bool
	metricsFile string
}

func newTrainCmd() *cobra.Command {
	c := &trainCmd{}
	cmd := &cobra.Command{
		Use:   "train DATA",
		Short: "Train a linear model on a LIBSVM file",
		Example: `
  convex train --algorithm tron --lambda 0.5 train.txt
  convex train --model svm --loss hinge --algorithm cd --test-file test.txt train.txt
  convex train --model svr --p 0.1 --plot trace.png -o svr.model train.txt
  convex train --labels labels.txt matrix.txt
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.kind, "model", "lr", "Model type: lr, svm, svr or ls")
	f.StringVarP(&c.algorithm, "algorithm", "a", "lbfgs", "Training algorithm, by name or numeric code")
	f.StringVar(&c.penalty, "penalty", "l2", "Regularizer: l1 or l2")
	f.Float64Var(&c.lambda, "lambda", classifier.DefaultLambda, "Regularization weight")
	f.IntVar(&c.maxIter, "max-iter", classifier.DefaultMaxIter, "Iteration, evaluation or epoch budget")
	f.Float64Var(&c.eps, "eps", classifier.DefaultEps, "Stopping tolerance")
	f.IntVar(&c.miniBatch, "minibatch", classifier.DefaultMiniBatch, "Minibatch size of stochastic methods")
	f.IntVar(&c.memory, "memory", classifier.DefaultMemory, "L-BFGS and OWL-QN history length")
	f.Float64Var(&c.alpha, "alpha", 0, "Initial step length; 0 uses the algorithm default")
	f.BoolVar(&c.bias, "bias", false, "Learn an intercept")
	f.Int64Var(&c.seed, "seed", 0, "Shuffling seed; 0 uses the current time")
	f.IntVar(&c.verbosity, "verbose", 0, "Solver log verbosity")

	f.StringVar(&c.loss, "loss", classifier.SquaredHinge.String(), "SVM loss: squared-hinge, hinge or huber-hinge")
	f.Float64Var(&c.threshold, "threshold", classifier.DefaultHuber, "Huber hinge threshold")
	f.Float64Var(&c.p, "p", classifier.DefaultSVREps, "SVR insensitive tube width")
	f.BoolVar(&c.squared, "squared", false, "Square the SVR loss")

	f.StringVar(&c.labels, "labels", "", "Label file; DATA is then a sparse \"row col value\" matrix")
	f.StringVar(&c.testFile, "test-file", "", "LIBSVM file to score the model on")
	f.Float64Var(&c.split, "split", 0, "Hold out this fraction of DATA for testing")
	f.StringVarP(&c.output, "output", "o", "model.txt", "Model output path")
	f.StringVar(&c.plot, "plot", "", "Save a convergence plot to this path (.png, .svg, .pdf)")
	f.BoolVar(&c.plotMeasure, "plot-measure", false, "Plot the convergence measure instead of the objective")
	f.StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	return cmd
}

func (c *trainCmd) run(out io.Writer, path string) error {
	train, err := c.load(path)
	if err != nil {
		return err
	}

	var test *dataset.Dataset
	switch {
	case c.testFile != "" && c.split > 0:
		return fmt.Errorf("--test-file and --split are mutually exclusive")
	case c.testFile != "":
		if test, err = dataset.LoadLibSVM(c.testFile); err != nil {
			return err
		}
	case c.split > 0:
		if c.split >= 1 {
			return fmt.Errorf("--split %v must be in (0, 1)", c.split)
		}
		train, test = train.Split(1-c.split, c.seed)
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	var trace *report.Trace
	if c.plot != "" {
		trace = report.NewTrace(cfg.Algorithm.String())
		cfg.Recorder = trace
	}

	klog.Infof("training %s with %s on %d examples, %d features", c.kind, cfg.Algorithm, train.Len(), train.NumFeatures)
	start := time.Now()
	model, err := c.train(train, cfg)
	if err != nil {
		return err
	}
	took := time.Since(start)

	if err := model.Save(c.output); err != nil {
		return err
	}
	fmt.Fprintf(out, "model saved to %s (%d non-zero weights, %v)\n", c.output, model.NNZ(), took.Round(time.Millisecond))
	for i, s := range model.Fits {
		fmt.Fprintf(out, "fit %d: f=%.6g iterations=%d status=%s\n", i, s.F, s.Iterations, s.Status)
	}

	var metrics *report.Metrics
	if c.metricsFile != "" {
		metrics = report.NewMetrics()
		metrics.ObserveModel(model, took)
	}
	for _, set := range []struct {
		name string
		ds   *dataset.Dataset
	}{{"train", train}, {"test", test}} {
		if set.ds == nil || set.ds.Len() == 0 {
			continue
		}
		name, score := scoreModel(model, set.ds)
		fmt.Fprintf(out, "%s %s = %.6g\n", set.name, name, score)
		if metrics != nil {
			metrics.ObserveScore(model, set.name, score)
		}
	}

	if metrics != nil {
		if err := metrics.WriteFile(c.metricsFile); err != nil {
			return err
		}
	}
	if trace != nil {
		title := fmt.Sprintf("%s %s on %s", c.kind, cfg.Algorithm, filepath.Base(path))
		if err := report.PlotTrace(c.plot, report.PlotOptions{Title: title, Measure: c.plotMeasure}, trace); err != nil {
			return err
		}
	}
	return nil
}

func (c *trainCmd) load(path string) (*dataset.Dataset, error) {
	if c.labels != "" {
		return dataset.LoadSparsePair(path, c.labels)
	}
	return dataset.LoadLibSVM(path)
}

func (c *trainCmd) config() (classifier.Config, error) {
	alg, err := classifier.ParseAlgorithm(c.algorithm)
	if err != nil {
		return classifier.Config{}, err
	}
	pen, err := classifier.ParsePenalty(c.penalty)
	if err != nil {
		return classifier.Config{}, err
	}
	return classifier.Config{
		Algorithm: alg,
		Penalty:   pen,
		Lambda:    c.lambda,
		MaxIter:   c.maxIter,
		Eps:       c.eps,
		MiniBatch: c.miniBatch,
		Memory:    c.memory,
		Alpha:     c.alpha,
		Bias:      c.bias,
		Seed:      c.seed,
		Verbosity: c.verbosity,
	}, nil
}

func (c *trainCmd) train(ds *dataset.Dataset, cfg classifier.Config) (*classifier.Model, error) {
	switch strings.ToLower(c.kind) {
	case "lr", "logistic":
		return classifier.TrainLogisticRegression(ds, cfg)
	case "svm":
		loss, err := classifier.ParseSVMLoss(c.loss)
		if err != nil {
			return nil, err
		}
		return classifier.TrainSVM(ds, classifier.SVMConfig{Config: cfg, Loss: loss, Threshold: c.threshold})
	case "svr":
		return classifier.TrainSVR(ds, classifier.SVRConfig{Config: cfg, Squared: c.squared, P: c.p})
	case "ls", "least-squares":
		return classifier.TrainLeastSquares(ds, cfg)
	default:
		return nil, fmt.Errorf("unknown model type %q (want lr, svm, svr or ls)", c.kind)
	}
}

// scoreModel returns accuracy for classifiers and mean squared error for
// regressors.
func scoreModel(m *classifier.Model, ds *dataset.Dataset) (string, float64) {
	if m.IsClassifier() {
		return "accuracy", m.Accuracy(ds)
	}
	return "mse", m.MeanSquaredError(ds)
}
